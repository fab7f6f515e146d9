// Package mork implements the MorkCodec: a bidirectional conversion
// between value.Value and the canonical trie byte encoding that triepath
// stores. Variables are encoded as De Bruijn indices via a ConversionContext
// so that α-equivalent expressions (expressions differing only in variable
// names) share the same key prefix in the atom trie.
package mork

import (
	"encoding/binary"
	"fmt"
	"math"

	"mettatron/symtab"
	"mettatron/value"
)

// Tag bytes identify the kind of node that follows, mirroring value.Value's
// tagged sum.
const (
	tagAtom byte = iota + 1
	tagVarNew
	tagVarRef
	tagSExpr
	tagLong
	tagFloat
	tagString
	tagUri
	tagBool
	tagUnit
	tagError
)

// ConversionContext carries the user-variable-name → De Bruijn-index
// mapping across one Encode call. The first occurrence of a variable name
// emits NewVar (and records the index); later occurrences of the same name
// emit VarRef(index). A fresh context must be used per top-level value
// being encoded — reusing one across unrelated values would make them
// share a De Bruijn numbering that isn't meaningful.
type ConversionContext struct {
	index   map[string]int
	counter int
}

func NewConversionContext() *ConversionContext {
	return &ConversionContext{index: make(map[string]int)}
}

// indexFor returns the De Bruijn index for name and whether this is its
// first occurrence under this context.
func (c *ConversionContext) indexFor(name string) (idx int, isNew bool) {
	if i, ok := c.index[name]; ok {
		return i, false
	}
	i := c.counter
	c.counter++
	c.index[name] = i
	return i, true
}

// Encode serializes v into canonical trie bytes. syms interns Atom names
// into the symbol IDs used as the byte payload (so identical atom names
// always produce identical bytes, and distinct names never collide).
func Encode(v value.Value, syms *symtab.Table, ctx *ConversionContext) []byte {
	var buf []byte
	return appendEncode(buf, v, syms, ctx)
}

func appendEncode(buf []byte, v value.Value, syms *symtab.Table, ctx *ConversionContext) []byte {
	switch n := v.(type) {
	case value.Atom:
		buf = append(buf, tagAtom)
		return appendVarint(buf, uint64(syms.Intern(n.Name)))

	case value.Variable:
		if n.IsWildcard() {
			// Each `_` is its own variable: always a fresh index.
			buf = append(buf, tagVarNew)
			idx := ctx.counter
			ctx.counter++
			return appendVarint(buf, uint64(idx))
		}
		idx, isNew := ctx.indexFor(n.Name)
		if isNew {
			buf = append(buf, tagVarNew)
		} else {
			buf = append(buf, tagVarRef)
		}
		return appendVarint(buf, uint64(idx))

	case value.SExpr:
		buf = append(buf, tagSExpr)
		buf = appendVarint(buf, uint64(len(n.Children)))
		for _, child := range n.Children {
			buf = appendEncode(buf, child, syms, ctx)
		}
		return buf

	case value.Long:
		buf = append(buf, tagLong)
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], uint64(n.V))
		return append(buf, tmp[:]...)

	case value.Float:
		buf = append(buf, tagFloat)
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(n.V))
		return append(buf, tmp[:]...)

	case value.String:
		buf = append(buf, tagString)
		return appendLengthPrefixed(buf, n.V)

	case value.Uri:
		buf = append(buf, tagUri)
		return appendLengthPrefixed(buf, n.V)

	case value.Bool:
		buf = append(buf, tagBool)
		if n.V {
			return append(buf, 1)
		}
		return append(buf, 0)

	case value.Unit:
		return append(buf, tagUnit)

	case value.Error:
		buf = append(buf, tagError)
		buf = appendLengthPrefixed(buf, string(n.ErrKind))
		buf = appendLengthPrefixed(buf, n.Message)
		if n.Offender != nil {
			buf = append(buf, 1)
			buf = appendEncode(buf, n.Offender, syms, ctx)
		} else {
			buf = append(buf, 0)
		}
		return buf

	default:
		panic(fmt.Sprintf("mork: unencodable value kind %T", v))
	}
}

// EncodeHeadPrefix returns the byte prefix shared by every encoded SExpr
// of the given arity whose first child is the atom interned as
// headSymbolID. Used by env's type-subtrie materialization to
// restrict the main trie to `(: ...)` facts without decoding every stored
// atom to check its head.
func EncodeHeadPrefix(headSymbolID symtab.ID, arity int) []byte {
	var buf []byte
	buf = append(buf, tagSExpr)
	buf = appendVarint(buf, uint64(arity))
	buf = append(buf, tagAtom)
	buf = appendVarint(buf, uint64(headSymbolID))
	return buf
}

func appendVarint(buf []byte, x uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], x)
	return append(buf, tmp[:n]...)
}

func appendLengthPrefixed(buf []byte, s string) []byte {
	buf = appendVarint(buf, uint64(len(s)))
	return append(buf, s...)
}

// Decode reverses Encode. Variable names are not preserved — they are
// regenerated from a pool ($a, $b, ...) keyed by De Bruijn index — so
// decode(encode(v)) is only guaranteed structurally equivalent to v
// (value.StructurallyEquivalent), never value.Equal when v contained
// variables.
func Decode(b []byte, syms *symtab.Table) (value.Value, error) {
	d := &decoder{buf: b, names: make(map[int]string)}
	v, err := d.decodeOne(syms)
	if err != nil {
		return nil, err
	}
	if d.pos != len(d.buf) {
		return nil, fmt.Errorf("mork: %d trailing bytes after decoding", len(d.buf)-d.pos)
	}
	return v, nil
}

type decoder struct {
	buf   []byte
	pos   int
	names map[int]string
}

var varNamePool = "abcdefghijklmnopqrstuvwxyz"

func varNameForIndex(idx int) string {
	if idx < len(varNamePool) {
		return "$" + string(varNamePool[idx])
	}
	return fmt.Sprintf("$v%d", idx)
}

func (d *decoder) decodeOne(syms *symtab.Table) (value.Value, error) {
	tag, err := d.readByte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagAtom:
		id, err := d.readVarint()
		if err != nil {
			return nil, err
		}
		return value.NewAtom(syms.Name(symtab.ID(id))), nil

	case tagVarNew, tagVarRef:
		idx, err := d.readVarint()
		if err != nil {
			return nil, err
		}
		name, ok := d.names[int(idx)]
		if !ok {
			name = varNameForIndex(int(idx))
			d.names[int(idx)] = name
		}
		return value.NewVariable(name), nil

	case tagSExpr:
		count, err := d.readVarint()
		if err != nil {
			return nil, err
		}
		children := make([]value.Value, count)
		for i := range children {
			child, err := d.decodeOne(syms)
			if err != nil {
				return nil, err
			}
			children[i] = child
		}
		return value.NewSExpr(children...), nil

	case tagLong:
		raw, err := d.readFixed8()
		if err != nil {
			return nil, err
		}
		return value.NewLong(int64(binary.LittleEndian.Uint64(raw))), nil

	case tagFloat:
		raw, err := d.readFixed8()
		if err != nil {
			return nil, err
		}
		return value.NewFloat(math.Float64frombits(binary.LittleEndian.Uint64(raw))), nil

	case tagString:
		s, err := d.readLengthPrefixed()
		if err != nil {
			return nil, err
		}
		return value.NewString(s), nil

	case tagUri:
		s, err := d.readLengthPrefixed()
		if err != nil {
			return nil, err
		}
		return value.NewUri(s), nil

	case tagBool:
		b, err := d.readByte()
		if err != nil {
			return nil, err
		}
		return value.NewBool(b != 0), nil

	case tagUnit:
		return value.NewUnit(), nil

	case tagError:
		kind, err := d.readLengthPrefixed()
		if err != nil {
			return nil, err
		}
		msg, err := d.readLengthPrefixed()
		if err != nil {
			return nil, err
		}
		hasOffending, err := d.readByte()
		if err != nil {
			return nil, err
		}
		var offending value.Value
		if hasOffending != 0 {
			offending, err = d.decodeOne(syms)
			if err != nil {
				return nil, err
			}
		}
		return value.NewError(value.ErrorKind(kind), msg, offending), nil

	default:
		return nil, fmt.Errorf("mork: unknown tag byte %d at offset %d", tag, d.pos-1)
	}
}

func (d *decoder) readByte() (byte, error) {
	if d.pos >= len(d.buf) {
		return 0, fmt.Errorf("mork: unexpected end of trie bytes")
	}
	b := d.buf[d.pos]
	d.pos++
	return b, nil
}

func (d *decoder) readFixed8() ([]byte, error) {
	if d.pos+8 > len(d.buf) {
		return nil, fmt.Errorf("mork: truncated 8-byte payload")
	}
	b := d.buf[d.pos : d.pos+8]
	d.pos += 8
	return b, nil
}

func (d *decoder) readVarint() (uint64, error) {
	x, n := binary.Uvarint(d.buf[d.pos:])
	if n <= 0 {
		return 0, fmt.Errorf("mork: malformed varint at offset %d", d.pos)
	}
	d.pos += n
	return x, nil
}

func (d *decoder) readLengthPrefixed() (string, error) {
	n, err := d.readVarint()
	if err != nil {
		return "", err
	}
	if d.pos+int(n) > len(d.buf) {
		return "", fmt.Errorf("mork: truncated string payload")
	}
	s := string(d.buf[d.pos : d.pos+int(n)])
	d.pos += int(n)
	return s, nil
}
