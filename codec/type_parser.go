// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

// Typed is an object that carries its registered type id.
type Typed interface {
	GetTypeID() uint8
}

type decoder[T any] struct {
	f func(*Packer) (T, error)
}

// TypeParser maps type ids to the functions that decode them.
type TypeParser[T Typed] struct {
	typeToIndex   map[uint8]struct{}
	indexToDecode map[uint8]decoder[T]
}

func NewTypeParser[T Typed]() *TypeParser[T] {
	return &TypeParser[T]{
		typeToIndex:   map[uint8]struct{}{},
		indexToDecode: map[uint8]decoder[T]{},
	}
}

// Register adds a decoder for the type id of [instance].
func (p *TypeParser[T]) Register(instance T, f func(*Packer) (T, error)) error {
	id := instance.GetTypeID()
	if _, ok := p.typeToIndex[id]; ok {
		return ErrDuplicateItem
	}
	p.typeToIndex[id] = struct{}{}
	p.indexToDecode[id] = decoder[T]{f}
	return nil
}

// LookupIndex returns the decoder for [index].
func (p *TypeParser[T]) LookupIndex(index uint8) (func(*Packer) (T, error), bool) {
	d, ok := p.indexToDecode[index]
	return d.f, ok
}

// Unmarshal reads a type id followed by the object it identifies.
func (p *TypeParser[T]) Unmarshal(pk *Packer) (T, error) {
	var empty T
	f, ok := p.LookupIndex(pk.UnpackByte())
	if err := pk.Err(); err != nil {
		return empty, err
	}
	if !ok {
		return empty, ErrUnknownType
	}
	return f(pk)
}
