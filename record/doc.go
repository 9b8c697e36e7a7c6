// Package record reads and writes Fortran unformatted sequential files.
//
// Every record is framed by its payload length, written as a 4-byte
// unsigned integer both before and after the payload:
//
//	[len uint32] [payload: len bytes] [len uint32]
//
// The package offers three levels of access. Next and Skip deal with raw
// payloads. Decode interprets a payload through a Descriptor, a versioned
// list of typed fields. ReadString, ReadTags and ReadDict cover the text
// conventions of SPH snapshot files: space-padded strings, 16-character
// tags and the three-record tag/value dictionary.
package record
