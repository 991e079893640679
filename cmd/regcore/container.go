package main

import (
	"encoding/binary"
	"fmt"

	"github.com/deepnoodle-ai/regcore/bytecode"
)

// sourceMagic identifies the CLI's own tiny on-disk container for a
// SourceCode: 4-byte magic, num_consts, num_locals (both little-endian
// uint32), then the raw code bytes. This format is a CLI convenience for
// round-tripping `regcore compile` input files, not part of the core
// wire contract package lower defines.
var sourceMagic = [4]byte{'R', 'G', 'S', '1'}

const sourceHeaderSize = 4 + 4 + 4

func encodeSourceContainer(name string, src *bytecode.SourceCode) []byte {
	code := src.CodeBytes()
	buf := make([]byte, sourceHeaderSize+len(code))
	copy(buf[0:4], sourceMagic[:])
	binary.LittleEndian.PutUint32(buf[4:8], src.NumConsts())
	binary.LittleEndian.PutUint32(buf[8:12], src.NumLocals())
	copy(buf[sourceHeaderSize:], code)
	return buf
}

func decodeSourceContainer(name string, data []byte) (*bytecode.SourceCode, error) {
	if len(data) < sourceHeaderSize {
		return nil, fmt.Errorf("regcore: truncated source container (%d bytes)", len(data))
	}
	var magic [4]byte
	copy(magic[:], data[0:4])
	if magic != sourceMagic {
		return nil, fmt.Errorf("regcore: bad source container magic %v", magic)
	}
	numConsts := binary.LittleEndian.Uint32(data[4:8])
	numLocals := binary.LittleEndian.Uint32(data[8:12])
	return bytecode.NewSourceCode(bytecode.SourceCodeParams{
		Name:      name,
		CodeBytes: data[sourceHeaderSize:],
		NumConsts: numConsts,
		NumLocals: numLocals,
	}), nil
}
