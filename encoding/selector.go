package encoding

import (
	"fmt"

	"github.com/arloliu/coltab/column"
	"github.com/arloliu/coltab/errs"
	"github.com/arloliu/coltab/format"
)

// SelectionState records how a block ended up with its representation.
type SelectionState uint8

const (
	// StatePreferred means the preferred codec encoded the column.
	StatePreferred SelectionState = iota
	// StateFallenBack means the preferred codec refused the column and Direct was used.
	StateFallenBack
)

func (s SelectionState) String() string {
	switch s {
	case StatePreferred:
		return "preferred"
	case StateFallenBack:
		return "fallen-back"
	default:
		return "unknown"
	}
}

// Block is one column encoded under the representation actually used.
//
// Decoding Payload with Kind and the column's row count yields exactly the
// column that was encoded.
type Block struct {
	Kind      format.RepresentationKind
	Preferred format.RepresentationKind
	State     SelectionState
	Payload   []byte
	// Reason is the codec failure that caused a fallback, nil otherwise.
	Reason error
}

// FellBack reports whether the block was written as Direct after the preferred codec failed.
func (b Block) FellBack() bool {
	return b.State == StateFallenBack
}

// Selector applies the try-preferred-else-Direct policy.
//
// The zero value is ready to use and is safe for concurrent use.
type Selector struct{}

// NewSelector creates a Selector.
func NewSelector() *Selector {
	return &Selector{}
}

// Encode encodes col with the preferred codec, falling back to Direct when that
// codec reports a codec failure (see errs.IsCodecFailure). Any other error,
// including an unknown preferred kind, is returned as is.
func (s *Selector) Encode(col column.Column, preferred format.RepresentationKind) (Block, error) {
	codec, err := GetCodec(preferred)
	if err != nil {
		return Block{}, err
	}

	payload, err := codec.Encode(col)
	if err == nil {
		return Block{Kind: preferred, Preferred: preferred, State: StatePreferred, Payload: payload}, nil
	}

	if !errs.IsCodecFailure(err) {
		return Block{}, fmt.Errorf("encode %s: %w", preferred, err)
	}

	payload, derr := DirectCodec{}.Encode(col)
	if derr != nil {
		return Block{}, derr
	}

	return Block{
		Kind:      format.KindDirect,
		Preferred: preferred,
		State:     StateFallenBack,
		Payload:   payload,
		Reason:    err,
	}, nil
}

// EncodeSmallest encodes col with every candidate that accepts it and keeps the
// smallest payload. Direct is always considered, ties keep the earliest
// candidate, and Direct goes last when it is not listed.
//
// The returned block reports StatePreferred, with Preferred set to the kind chosen.
func (s *Selector) EncodeSmallest(col column.Column, candidates ...format.RepresentationKind) (Block, error) {
	kinds := make([]format.RepresentationKind, 0, len(candidates)+1)
	hasDirect := false
	for _, kind := range candidates {
		if kind == format.KindDirect {
			hasDirect = true
		}
		kinds = append(kinds, kind)
	}
	if !hasDirect {
		kinds = append(kinds, format.KindDirect)
	}

	var best Block
	found := false
	for _, kind := range kinds {
		codec, err := GetCodec(kind)
		if err != nil {
			return Block{}, err
		}

		payload, err := codec.Encode(col)
		if err != nil {
			if errs.IsCodecFailure(err) {
				continue
			}

			return Block{}, fmt.Errorf("encode %s: %w", kind, err)
		}

		if !found || len(payload) < len(best.Payload) {
			best = Block{Kind: kind, Preferred: kind, State: StatePreferred, Payload: payload}
			found = true
		}
	}

	return best, nil
}
