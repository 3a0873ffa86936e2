// Copyright ©2024 The gridlogic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package automaton

import (
	"encoding/base64"
	"fmt"

	"github.com/loopfield/gridlogic/bitset"
)

// format selects the DFA serialisation body encoding: plain lists each
// (symbol, target) pair explicitly; packed stores a symbol-presence
// bitmask per state followed by one target per set bit. Packed is
// always legal for a DFA (every symbol has at most one target) and is
// chosen whenever it is estimated smaller (spec.md §4.7).
type format uint8

const (
	formatPlain  format = 0
	formatPacked format = 1
)

// bitWriter appends bits MSB-first into a byte buffer.
type bitWriter struct {
	buf  []byte
	cur  byte
	nbit uint
}

func (w *bitWriter) writeBits(v uint64, n int) {
	for i := n - 1; i >= 0; i-- {
		bit := byte((v >> uint(i)) & 1)
		w.cur = w.cur<<1 | bit
		w.nbit++
		if w.nbit == 8 {
			w.buf = append(w.buf, w.cur)
			w.cur = 0
			w.nbit = 0
		}
	}
}

func (w *bitWriter) bytes() []byte {
	if w.nbit == 0 {
		return w.buf
	}
	pad := 8 - w.nbit
	last := w.cur << pad
	return append(append([]byte(nil), w.buf...), last)
}

// bitReader reads bits MSB-first from a byte buffer; reads past the
// end of data yield zero bits, matching the "trailing padding is
// ignored" decode rule.
type bitReader struct {
	data []byte
	pos  uint
}

func (r *bitReader) readBits(n int) uint64 {
	var v uint64
	for i := 0; i < n; i++ {
		byteIdx := r.pos / 8
		bitIdx := 7 - r.pos%8
		var bit uint64
		if int(byteIdx) < len(r.data) {
			bit = uint64((r.data[byteIdx] >> bitIdx) & 1)
		}
		v = v<<1 | bit
		r.pos++
	}
	return v
}

// bitsFor returns the number of bits needed to represent values
// 0..n-1 (at least 1).
func bitsFor(n int) int {
	b := 0
	for (1 << uint(b)) < n {
		b++
	}
	if b == 0 {
		b = 1
	}
	return b
}

// canonicalOrder returns a remap old->new placing the start state
// first, then the remaining accepting states, then the rest, per
// spec.md §4.7's state-ordering rule. Subset always builds a DFA with
// a single start state, so the start group's size is always 1.
func (d *DFA) canonicalOrder() (remap []int, startCount, acceptExcludingStart int) {
	remap = make([]int, d.States)
	for i := range remap {
		remap[i] = -1
	}
	next := 0
	remap[d.Start] = next
	next++
	for s := 0; s < d.States; s++ {
		if s != d.Start && d.Accept[s] {
			remap[s] = next
			next++
			acceptExcludingStart++
		}
	}
	for s := 0; s < d.States; s++ {
		if remap[s] == -1 {
			remap[s] = next
			next++
		}
	}
	return remap, 1, acceptExcludingStart
}

type symTarget struct {
	sym, target int
}

// Encode serialises d into a compact binary wire format patterned on
// spec.md §4.7 (format bit, state/symbol bit widths, start/accept
// counts, a start-accepting mask, then per-state transition bodies in
// canonical order), base64-encoded. The header additionally carries an
// explicit state count so Decode can stop deterministically instead of
// inferring the end of the body from trailing-bit heuristics.
func Encode(d *DFA) (string, error) {
	if d.States == 0 {
		return "", fmt.Errorf("automaton: cannot encode an empty DFA")
	}
	remap, startCount, acceptCount := d.canonicalOrder()
	order := make([]int, d.States)
	for old, nw := range remap {
		order[nw] = old
	}

	stateBits := bitsFor(d.States)
	symbolBits := bitsFor(d.Symbols)

	perState := make([][]symTarget, d.States)
	for nw, old := range order {
		var entries []symTarget
		for _, e := range d.Trans[old] {
			target := remap[e.Dest]
			bitset.Each(e.Mask, func(sym int) {
				entries = append(entries, symTarget{sym, target})
			})
		}
		perState[nw] = entries
	}

	plainBits, packedBits := 0, 0
	maxTrans := 0
	for _, entries := range perState {
		if len(entries) > maxTrans {
			maxTrans = len(entries)
		}
		plainBits += len(entries) * (symbolBits + stateBits)
		packedBits += d.Symbols + len(entries)*stateBits
	}
	transitionCountBits := bitsFor(maxTrans + 1)
	plainBits += len(perState) * transitionCountBits

	useFormat := formatPlain
	if packedBits < plainBits {
		useFormat = formatPacked
	}

	w := &bitWriter{}
	w.writeBits(uint64(useFormat), 2)
	w.writeBits(uint64(stateBits-1), 4)
	w.writeBits(uint64(symbolBits-1), 4)
	w.writeBits(uint64(d.States), stateBits+1)
	w.writeBits(uint64(startCount), stateBits)
	w.writeBits(uint64(acceptCount), stateBits)
	for i := 0; i < startCount; i++ {
		if d.Accept[order[i]] {
			w.writeBits(1, 1)
		} else {
			w.writeBits(0, 1)
		}
	}
	if useFormat == formatPlain {
		w.writeBits(uint64(transitionCountBits-1), 4)
	}

	for _, entries := range perState {
		if useFormat == formatPlain {
			w.writeBits(uint64(len(entries)), transitionCountBits)
			for _, e := range entries {
				w.writeBits(uint64(e.sym), symbolBits)
				w.writeBits(uint64(e.target), stateBits)
			}
			continue
		}
		targetBySymbol := make([]int, d.Symbols)
		for i := range targetBySymbol {
			targetBySymbol[i] = -1
		}
		for _, e := range entries {
			targetBySymbol[e.sym] = e.target
		}
		for sym := 0; sym < d.Symbols; sym++ {
			if targetBySymbol[sym] >= 0 {
				w.writeBits(1, 1)
			} else {
				w.writeBits(0, 1)
			}
		}
		for _, t := range targetBySymbol {
			if t >= 0 {
				w.writeBits(uint64(t), stateBits)
			}
		}
	}

	return base64.StdEncoding.EncodeToString(w.bytes()), nil
}

// Decode parses the wire format Encode produces back into a DFA whose
// state 0 is the start state (Encode's canonical ordering is preserved
// on the wire, so no further remapping is needed). symbols must be the
// same alphabet size the DFA was encoded with (RegexLine always has it
// on hand, from shape.Values) — the header's symbol-bit width alone
// rounds up to a power of two and cannot recover the exact count when
// a packed body's per-state presence mask length depends on it.
func Decode(s string, symbols int) (*DFA, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("automaton: invalid base64: %w", err)
	}
	r := &bitReader{data: raw}

	fmtBits := format(r.readBits(2))
	stateBits := int(r.readBits(4)) + 1
	symbolBits := int(r.readBits(4)) + 1
	states := int(r.readBits(stateBits + 1))
	if states == 0 {
		return nil, fmt.Errorf("automaton: encoded DFA has zero states")
	}
	startCount := int(r.readBits(stateBits))
	acceptCount := int(r.readBits(stateBits))

	accept := make([]bool, states)
	for i := 0; i < startCount; i++ {
		accept[i] = r.readBits(1) == 1
	}
	for i := startCount; i < startCount+acceptCount && i < states; i++ {
		accept[i] = true
	}

	transitionCountBits := 0
	if fmtBits == formatPlain {
		transitionCountBits = int(r.readBits(4)) + 1
	}

	d := &DFA{
		States:  states,
		Symbols: symbols,
		Start:   0,
		Accept:  accept,
		Trans:   make([][]Edge, states),
	}

	for st := 0; st < states; st++ {
		grouped := map[int]bitset.Set{}
		var order []int
		addTarget := func(sym, target int) {
			if _, ok := grouped[target]; !ok {
				order = append(order, target)
			}
			grouped[target] = grouped[target].With(sym)
		}
		if fmtBits == formatPlain {
			count := int(r.readBits(transitionCountBits))
			for k := 0; k < count; k++ {
				sym := int(r.readBits(symbolBits))
				target := int(r.readBits(stateBits))
				addTarget(sym, target)
			}
		} else {
			present := make([]bool, symbols)
			for sym := 0; sym < symbols; sym++ {
				present[sym] = r.readBits(1) == 1
			}
			for sym := 0; sym < symbols; sym++ {
				if present[sym] {
					target := int(r.readBits(stateBits))
					addTarget(sym, target)
				}
			}
		}
		edges := make([]Edge, 0, len(order))
		for _, t := range order {
			edges = append(edges, Edge{Dest: t, Mask: grouped[t]})
		}
		d.Trans[st] = edges
	}

	return d, nil
}
