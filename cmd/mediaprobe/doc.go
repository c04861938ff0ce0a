// Command mediaprobe reads media information from the report `ffmpeg -i`
// prints.
//
// Usage:
//
//	mediaprobe info <file>...
//	mediaprobe get <field> <file>
//	mediaprobe has <video|audio> <file>
//	mediaprobe cache stats|clear|prune
//	mediaprobe status
//	mediaprobe watch <path>...
//	mediaprobe config init|show|validate
//
// Output is a table on a terminal and JSON otherwise; --format overrides the
// choice.
package main
