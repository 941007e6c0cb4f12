// Package ipierr defines the closed error taxonomy returned by every
// fallible operation in the lookup core. Nothing in this module panics for
// control flow; a caller that wants to branch on failure kind should use
// errors.As to recover an *Error and inspect its Code.
package ipierr

import (
	"fmt"
	"runtime"
)

// Code classifies an error into one of the fixed categories the core can
// produce. The set is closed: add a case here before returning a new kind
// anywhere else in the module.
type Code int

const (
	Success Code = iota
	InsufficientMemory
	CorruptData
	IncorrectVersion
	FileNotFound
	FileBusy
	FileFailure
	PointerOutOfBounds
	NullPointer
	TooManyOpenFiles
	RequiredPropertyNotPresent
	EmptyProfile
	CollectionFailure
	FileCopyError
	FileExists
	FileWriteError
	FileReadError
	FilePermissionDenied
	FilePathTooLong
	EncodingError
	InvalidCollectionConfig
	InvalidConfig
	InsufficientHandles
	CollectionIndexOutOfRange
	CollectionOffsetOutOfRange
	CollectionFileSeekFail
	CollectionFileReadFail
	IncorrectIpAddressFormat
	TempFileError
	InsufficientCapacity
	InvalidInput
	UnsupportedStoredValueType
	FileTooLarge
	UnknownGeometry
	ReservedGeometry
)

var names = map[Code]string{
	Success:                    "Success",
	InsufficientMemory:         "InsufficientMemory",
	CorruptData:                "CorruptData",
	IncorrectVersion:           "IncorrectVersion",
	FileNotFound:               "FileNotFound",
	FileBusy:                   "FileBusy",
	FileFailure:                "FileFailure",
	PointerOutOfBounds:         "PointerOutOfBounds",
	NullPointer:                "NullPointer",
	TooManyOpenFiles:           "TooManyOpenFiles",
	RequiredPropertyNotPresent: "RequiredPropertyNotPresent",
	EmptyProfile:               "EmptyProfile",
	CollectionFailure:          "CollectionFailure",
	FileCopyError:              "FileCopyError",
	FileExists:                 "FileExists",
	FileWriteError:             "FileWriteError",
	FileReadError:              "FileReadError",
	FilePermissionDenied:       "FilePermissionDenied",
	FilePathTooLong:            "FilePathTooLong",
	EncodingError:              "EncodingError",
	InvalidCollectionConfig:    "InvalidCollectionConfig",
	InvalidConfig:              "InvalidConfig",
	InsufficientHandles:        "InsufficientHandles",
	CollectionIndexOutOfRange:  "CollectionIndexOutOfRange",
	CollectionOffsetOutOfRange: "CollectionOffsetOutOfRange",
	CollectionFileSeekFail:     "CollectionFileSeekFail",
	CollectionFileReadFail:     "CollectionFileReadFail",
	IncorrectIpAddressFormat:   "IncorrectIpAddressFormat",
	TempFileError:              "TempFileError",
	InsufficientCapacity:       "InsufficientCapacity",
	InvalidInput:               "InvalidInput",
	UnsupportedStoredValueType: "UnsupportedStoredValueType",
	FileTooLarge:               "FileTooLarge",
	UnknownGeometry:            "UnknownGeometry",
	ReservedGeometry:           "ReservedGeometry",
}

func (c Code) String() string {
	if s, ok := names[c]; ok {
		return s
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Error is a typed, located error. File/Func/Line are captured at the point
// New or Wrap was called, giving the out-of-band diagnostic capture spec.md
// §2.12 asks for without resorting to panics.
type Error struct {
	Code Code
	Msg  string
	Err  error
	File string
	Func string
	Line int
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	loc := fmt.Sprintf("%s:%d", e.File, e.Line)
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%s, %s): %v", e.Code, e.Msg, loc, e.Func, e.Err)
	}
	return fmt.Sprintf("%s: %s (%s, %s)", e.Code, e.Msg, loc, e.Func)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ipierr.New(SomeCode, "")) match on Code alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func capture(skip int) (file, fn string, line int) {
	pc, f, l, ok := runtime.Caller(skip)
	if !ok {
		return "unknown", "unknown", 0
	}
	file, line = f, l
	if rf := runtime.FuncForPC(pc); rf != nil {
		fn = rf.Name()
	}
	return
}

// New builds an Error of the given code, capturing the caller's location.
func New(code Code, msg string) *Error {
	file, fn, line := capture(2)
	return &Error{Code: code, Msg: msg, File: file, Func: fn, Line: line}
}

// Wrap builds an Error of the given code around an underlying cause.
func Wrap(code Code, msg string, cause error) *Error {
	if cause == nil {
		return New(code, msg)
	}
	file, fn, line := capture(2)
	return &Error{Code: code, Msg: msg, Err: cause, File: file, Func: fn, Line: line}
}

// CodeOf returns the Code carried by err, or Success if err does not wrap
// an *Error (Success doubles as "no classification available").
func CodeOf(err error) Code {
	var e *Error
	if as(err, &e) {
		return e.Code
	}
	return Success
}

// as is a tiny local errors.As to avoid importing "errors" just for this.
func as(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
