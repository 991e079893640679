// Package bytecode defines the input contract this core consumes: an
// immutable representation of a compiled function object exposing a
// linear byte string of stack-machine instructions, a constant pool size,
// and a local-variable count.
//
// This is deliberately the minimal shape spec.md §6 names ("code_bytes,
// num_consts, num_locals"). Everything else about the compiled function —
// its constants' actual values, its name resolution tables, its source
// map — belongs to the front-end compiler and the embedding runtime,
// both out of scope for this repository (spec.md §1).
//
// # Immutability
//
// SourceCode is immutable after construction: NewSourceCode copies its
// input byte slice, and CodeBytes returns a defensive copy so callers
// cannot mutate the code out from under a running registerizer.
package bytecode
