package models

import (
	"fmt"
	"strings"
)

// Flag is a category tag. The set of flags is closed.
type Flag string

const (
	FlagQuestion   Flag = "Question"
	FlagOpinion    Flag = "Opinion"
	FlagNews       Flag = "News"
	FlagDiscussion Flag = "Discussion"
)

// AllFlags lists every flag in display order.
var AllFlags = []Flag{FlagQuestion, FlagOpinion, FlagNews, FlagDiscussion}

// ParseFlag resolves s to one of the known flags, ignoring case.
func ParseFlag(s string) (Flag, error) {
	for _, f := range AllFlags {
		if strings.EqualFold(string(f), strings.TrimSpace(s)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown flag %q", s)
}

// Valid reports whether f is one of the known flags.
func (f Flag) Valid() bool {
	for _, known := range AllFlags {
		if f == known {
			return true
		}
	}
	return false
}

// UnmarshalText rejects unknown flags so request bodies cannot carry typos.
func (f *Flag) UnmarshalText(text []byte) error {
	parsed, err := ParseFlag(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Flags is a set of category tags kept in first-seen order.
type Flags []Flag

// NewFlags builds a set from fs, dropping duplicates and unknown values.
func NewFlags(fs ...Flag) Flags {
	out := make(Flags, 0, len(fs))
	for _, f := range fs {
		if f.Valid() && !out.Contains(f) {
			out = append(out, f)
		}
	}
	return out
}

// FlagsFromStrings converts stored column values back into a set.
func FlagsFromStrings(values []string) Flags {
	fs := make([]Flag, 0, len(values))
	for _, v := range values {
		if f, err := ParseFlag(v); err == nil {
			fs = append(fs, f)
		}
	}
	return NewFlags(fs...)
}

// Contains reports whether f is in the set.
func (fs Flags) Contains(f Flag) bool {
	for _, x := range fs {
		if x == f {
			return true
		}
	}
	return false
}

// Strings returns the flags as plain strings for storage.
func (fs Flags) Strings() []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = string(f)
	}
	return out
}
