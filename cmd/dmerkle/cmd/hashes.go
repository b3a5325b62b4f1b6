package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gordian-engine/dmerkle/dhash"
	"github.com/gordian-engine/dmerkle/dhash/dblake3"
	"github.com/gordian-engine/dmerkle/dhash/ddouble"
	"github.com/gordian-engine/dmerkle/dhash/dkeccak"
	"github.com/gordian-engine/dmerkle/dhash/dsha256"
)

const (
	hashSHA256       = "sha256"
	hashSHA256SIMD   = "sha256-simd"
	hashKeccak256    = "keccak256"
	hashSHA3         = "sha3-256"
	hashBLAKE3       = "blake3"
	hashDoubleSHA256 = "double-sha256"
)

var hashFactories = map[string]dhash.Factory{
	hashSHA256:       dsha256.New,
	hashSHA256SIMD:   dsha256.NewSIMD,
	hashKeccak256:    dkeccak.NewLegacyKeccak256,
	hashSHA3:         dkeccak.NewSHA3,
	hashBLAKE3:       dblake3.New,
	hashDoubleSHA256: ddouble.Wrap(dsha256.New),
}

func hashFactory(name string) (dhash.Factory, error) {
	f, ok := hashFactories[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf(
			"unknown hash %q (expected one of: %s)",
			name, strings.Join(hashNames(), ", "),
		)
	}
	return f, nil
}

func hashNames() []string {
	names := make([]string, 0, len(hashFactories))
	for name := range hashFactories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
