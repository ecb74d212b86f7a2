// Package remote implements the HTTP clients for the transcription
// service: the chunked-upload job protocol with status polling, and the
// single-shot multipart transcription call.
package remote
