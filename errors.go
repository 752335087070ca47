package ecs150fs

import (
	"errors"
	"fmt"

	"github.com/mpgrau/ecs150fs/internal/openfile"
	"github.com/mpgrau/ecs150fs/internal/rootdir"
	"github.com/mpgrau/ecs150fs/internal/superblock"
)

// Kind classifies a failure from the public API, per spec.md §7's closed set
// of error kinds.
type Kind int

const (
	KindNone Kind = iota
	KindNotMounted
	KindAlreadyMounted
	KindIo
	KindBadSignature
	KindBadGeometry
	KindInvalidName
	KindNameExists
	KindNotFound
	KindDirFull
	KindTooManyOpen
	KindBadDescriptor
	KindSeekOutOfRange
	KindBusy
)

func (k Kind) String() string {
	switch k {
	case KindNotMounted:
		return "not mounted"
	case KindAlreadyMounted:
		return "already mounted"
	case KindIo:
		return "io error"
	case KindBadSignature:
		return "bad signature"
	case KindBadGeometry:
		return "bad geometry"
	case KindInvalidName:
		return "invalid name"
	case KindNameExists:
		return "name exists"
	case KindNotFound:
		return "not found"
	case KindDirFull:
		return "directory full"
	case KindTooManyOpen:
		return "too many open files"
	case KindBadDescriptor:
		return "bad descriptor"
	case KindSeekOutOfRange:
		return "seek out of range"
	case KindBusy:
		return "busy"
	default:
		return "unknown error"
	}
}

// Error is the error type every public operation returns on failure.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ecs150fs: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("ecs150fs: %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ecs150fs.ErrNotFound) etc. work by comparing kinds,
// so a sentinel check does not need to know the operation or wrapped cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newErr(op string, kind Kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Sentinel errors for errors.Is checks against a specific kind, independent of op/cause.
var (
	ErrNotMounted     = &Error{Kind: KindNotMounted}
	ErrAlreadyMounted = &Error{Kind: KindAlreadyMounted}
	ErrIo             = &Error{Kind: KindIo}
	ErrBadSignature   = &Error{Kind: KindBadSignature}
	ErrBadGeometry    = &Error{Kind: KindBadGeometry}
	ErrInvalidName    = &Error{Kind: KindInvalidName}
	ErrNameExists     = &Error{Kind: KindNameExists}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrDirFull        = &Error{Kind: KindDirFull}
	ErrTooManyOpen    = &Error{Kind: KindTooManyOpen}
	ErrBadDescriptor  = &Error{Kind: KindBadDescriptor}
	ErrSeekOutOfRange = &Error{Kind: KindSeekOutOfRange}
	ErrBusy           = &Error{Kind: KindBusy}
)

// translateMount maps a superblock load failure to the right Kind.
func translateMount(op string, err error) error {
	switch {
	case errors.Is(err, superblock.ErrBadSignature):
		return newErr(op, KindBadSignature, err)
	case errors.Is(err, superblock.ErrBadGeometry):
		return newErr(op, KindBadGeometry, err)
	default:
		return newErr(op, KindIo, err)
	}
}

// translateRootdir maps a rootdir package error to the right Kind.
func translateRootdir(op string, err error) error {
	switch {
	case errors.Is(err, rootdir.ErrInvalidName):
		return newErr(op, KindInvalidName, err)
	case errors.Is(err, rootdir.ErrNameExists):
		return newErr(op, KindNameExists, err)
	case errors.Is(err, rootdir.ErrNotFound):
		return newErr(op, KindNotFound, err)
	case errors.Is(err, rootdir.ErrDirFull):
		return newErr(op, KindDirFull, err)
	default:
		return newErr(op, KindIo, err)
	}
}

// translateOpenfile maps an openfile package error to the right Kind.
func translateOpenfile(op string, err error) error {
	switch {
	case errors.Is(err, openfile.ErrTooManyOpen):
		return newErr(op, KindTooManyOpen, err)
	case errors.Is(err, openfile.ErrBadDescriptor):
		return newErr(op, KindBadDescriptor, err)
	case errors.Is(err, openfile.ErrSeekOutOfRange):
		return newErr(op, KindSeekOutOfRange, err)
	default:
		return newErr(op, KindIo, err)
	}
}

// translateFat maps any fat package failure (chain corruption, a failed FAT block read)
// to an Io-class error: these represent on-disk inconsistency, not caller
// misuse, so callers should treat them the same as a failed block read.
func translateFat(op string, err error) error {
	return newErr(op, KindIo, err)
}
