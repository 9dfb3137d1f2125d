// Package util provides shared helpers for text handling used across
// omnisend packages.
//
//   - LossyString: decode wire bytes as UTF-8, replacing invalid sequences
//   - TruncateBody: cap request/response bodies for safe logging
package util
