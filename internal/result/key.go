package result

import "strconv"

type keyKind uint8

const (
	kindInt keyKind = iota
	kindString
	kindAppend
)

// Key is an offset into a DocumentIterator: either an integer or a string.
// The zero value is Int(0).
type Key struct {
	kind keyKind
	num  int
	str  string
}

// Append is the marker key that makes Set pick the next free integer offset.
var Append = Key{kind: kindAppend}

// Int returns an integer key.
func Int(i int) Key { return Key{kind: kindInt, num: i} }

// Str returns a string key. Str("5") and Int(5) are distinct keys;
// use ParseKey for array-key semantics.
func Str(s string) Key { return Key{kind: kindString, str: s} }

// ParseKey returns Int for canonical decimal integers ("5", "-3") and Str
// for everything else ("05", "5.0", "a").
func ParseKey(s string) Key {
	i, err := strconv.Atoi(s)
	if err == nil && strconv.Itoa(i) == s {
		return Int(i)
	}
	return Str(s)
}

// IsInt reports whether k is an integer key.
func (k Key) IsInt() bool { return k.kind == kindInt }

// IsString reports whether k is a string key.
func (k Key) IsString() bool { return k.kind == kindString }

// IsAppend reports whether k is the Append marker.
func (k Key) IsAppend() bool { return k.kind == kindAppend }

// AsInt returns the integer value of an integer key.
func (k Key) AsInt() (int, bool) { return k.num, k.kind == kindInt }

// AsString returns the value of a string key.
func (k Key) AsString() (string, bool) { return k.str, k.kind == kindString }

// String formats the key the way it would appear as a JSON object key.
func (k Key) String() string {
	switch k.kind {
	case kindInt:
		return strconv.Itoa(k.num)
	case kindString:
		return k.str
	default:
		return "[]"
	}
}

// MarshalText implements encoding.TextMarshaler so keys can index JSON objects.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
