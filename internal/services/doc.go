// Package services holds the error taxonomy shared by the ingestion pipeline
// and its external tool clients, which live in subpackages (ytdlp, ffmpeg).
package services
