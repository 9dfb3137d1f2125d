// Package id provides identifier generation for omnisend.
//
//   - UUID: random UUID v4, used as the request id that ties dispatch log lines together
//   - Short: 16-character hex ids for log-friendly labels such as sandbox listener ids
package id
