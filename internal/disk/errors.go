package disk

import "errors"

// Boot record errors. They are reported by Detect and Decode and never stop
// an edit session: the table is left empty and may be rebuilt from scratch.
var (
	ErrUnrecognizedBootRecord = errors.New("bootrec: unrecognized boot record")
	ErrSignatureMismatch      = errors.New("bootrec: signature mismatch")
	ErrPointerOutOfRange      = errors.New("bootrec: pointer out of range")
	ErrChecksumMismatch       = errors.New("bootrec: checksum mismatch")
	ErrShortBuffer            = errors.New("bootrec: buffer too short")
)

// Encode errors.
var (
	ErrBootCodeTooLarge = errors.New("bootrec: boot loader code too large")
	ErrBootCodeMissing  = errors.New("bootrec: boot loader code is empty")
)

// Table editing errors.
var (
	ErrIndexOutOfRange     = errors.New("partition number out of range")
	ErrSlotAlreadyOccupied = errors.New("partition already defined")
	ErrSlotAlreadyEmpty    = errors.New("partition not defined")
	ErrRangeOutOfBounds    = errors.New("value out of range")
	ErrTableFull           = errors.New("partition table is full")
)
