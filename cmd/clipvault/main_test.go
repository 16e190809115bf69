package main

import (
	"strings"
	"testing"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCommand()

	want := []string{"serve", "status", "ingest", "add", "list", "show", "remove", "cache", "config", "deps"}
	have := make(map[string]bool)
	for _, cmd := range root.Commands() {
		have[cmd.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestRenderTable(t *testing.T) {
	out := renderTable(
		[]string{"ID", "Player"},
		[][]string{{"a1", "Jordan Reyes"}, {"b2"}},
		[]columnAlignment{alignLeft, alignLeft},
	)
	if !strings.Contains(out, "Jordan Reyes") {
		t.Fatalf("table missing row content:\n%s", out)
	}
	if !strings.Contains(out, "ID") {
		t.Fatalf("table missing header:\n%s", out)
	}
}
