// Package program loads operation lists from YAML or JSON files and replays
// them onto an OpsVec.
//
// A program file looks like:
//
//	name: bell
//	qubits: 2
//	ops:
//	  - init
//	  - h: 0
//	  - cx: [0, 1]
//	  - measure: {qubit: 0, slot: 0}
//	  - measure: 1
//
// Addresses are either an integer or an [x, y] pair for grid layers. A bare
// address given to measure uses the same index for the slot.
package program

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/lay/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ErrInvalidProgram is returned for malformed program files.
var ErrInvalidProgram = errors.New("invalid program")

// ErrTooLarge is returned by Limits.Check.
var ErrTooLarge = errors.New("program exceeds limits")

// MaxIndex bounds every linear qubit or slot index, and the declared qubit
// count and grid width.
const MaxIndex = 1 << 24

// Address is a qubit or slot address. Linear programs leave Y at zero.
type Address struct {
	X int `mapstructure:"x"`
	Y int `mapstructure:"y"`
}

func (a Address) String() string {
	if a.Y == 0 {
		return fmt.Sprint(a.X)
	}
	return fmt.Sprintf("[%d, %d]", a.X, a.Y)
}

// Step is one decoded operation. Target is only set for two-qubit gates and
// Slot only for measurements.
type Step struct {
	Code   domain.Opcode
	Qubit  Address
	Target Address
	Slot   Address
}

// Program is a decoded program file.
type Program struct {
	Name   string
	Qubits int
	Grid   int
	Steps  []Step
}

// File is the on-disk representation of a program.
type File struct {
	Name   string `yaml:"name" json:"name"`
	Qubits int    `yaml:"qubits" json:"qubits"`
	Grid   int    `yaml:"grid" json:"grid"`
	Ops    []any  `yaml:"ops" json:"ops"`
}

// Load reads a program file. Files ending in .json are parsed as JSON,
// everything else as YAML.
func Load(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		return ParseJSON(data)
	}
	return ParseYAML(data)
}

// ParseYAML decodes a YAML program.
func ParseYAML(data []byte) (*Program, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProgram, err)
	}
	return f.Decode()
}

// ParseJSON decodes a JSON program. Numbers keep their exact value, so an
// address too large for a float is still rejected by its real magnitude.
func ParseJSON(data []byte) (*Program, error) {
	var f File
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProgram, err)
	}
	return f.Decode()
}

// Decode converts the raw op entries into steps and validates them.
func (f File) Decode() (*Program, error) {
	p := &Program{Name: f.Name, Qubits: f.Qubits, Grid: f.Grid}
	if f.Qubits < 0 || f.Grid < 0 {
		return nil, fmt.Errorf("%w: qubits and grid must not be negative", ErrInvalidProgram)
	}
	for i, raw := range f.Ops {
		step, err := decodeStep(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: op %d: %v", ErrInvalidProgram, i, err)
		}
		p.Steps = append(p.Steps, step)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks that every address is non-negative, folds to a linear
// index below MaxIndex and, when the program declares its size, lies inside it.
func (p *Program) Validate() error {
	if p.Qubits > MaxIndex || p.Grid > MaxIndex {
		return fmt.Errorf("%w: qubits and grid must not exceed %d", ErrInvalidProgram, MaxIndex)
	}
	for i, s := range p.Steps {
		for _, a := range p.addresses(s) {
			if a.X < 0 || a.Y < 0 {
				return fmt.Errorf("%w: op %d: negative address %s", ErrInvalidProgram, i, a)
			}
			if !p.inRange(a) {
				return fmt.Errorf("%w: op %d: %s folds beyond index %d", ErrInvalidProgram, i, a, MaxIndex)
			}
			if p.Grid > 0 && a.X >= p.Grid {
				return fmt.Errorf("%w: op %d: %s is outside a grid of width %d", ErrInvalidProgram, i, a, p.Grid)
			}
			if p.Grid == 0 && a.Y != 0 {
				return fmt.Errorf("%w: op %d: grid address %s in a linear program", ErrInvalidProgram, i, a)
			}
		}
		if p.Qubits > 0 {
			for _, q := range p.qubits(s) {
				if p.Index(q) >= p.Qubits {
					return fmt.Errorf("%w: op %d: qubit %s exceeds %d qubits", ErrInvalidProgram, i, q, p.Qubits)
				}
			}
		}
	}
	return nil
}

// inRange reports whether a folds to an index below MaxIndex, without
// overflowing on the way.
func (p *Program) inRange(a Address) bool {
	if a.X >= MaxIndex {
		return false
	}
	if p.Grid == 0 {
		// Y is rejected separately for linear programs.
		return true
	}
	return a.Y <= (MaxIndex-1-a.X)/p.Grid
}

// Index folds an address into a linear index using the program's grid width.
// It is only meaningful for validated programs.
func (p *Program) Index(a Address) int {
	return a.X + a.Y*p.Grid
}

// Width returns the number of qubits the program needs: the declared count,
// or one past the highest qubit index used.
func (p *Program) Width() int {
	if p.Qubits > 0 {
		return p.Qubits
	}
	n := 0
	for _, s := range p.Steps {
		for _, q := range p.qubits(s) {
			n = max(n, p.Index(q)+1)
		}
	}
	return n
}

// Slots returns one past the highest linear slot index written by a measurement.
func (p *Program) Slots() int {
	n := 0
	for _, s := range p.Steps {
		if s.Code == domain.OpMeas {
			n = max(n, p.Index(s.Slot)+1)
		}
	}
	return n
}

// Limits caps what a program may ask of a backend. Zero fields are unlimited.
type Limits struct {
	Qubits int
	Slots  int
}

// Check returns ErrTooLarge when p needs more qubits or slots than allowed.
func (l Limits) Check(p *Program) error {
	if n := p.Width(); l.Qubits > 0 && n > l.Qubits {
		return fmt.Errorf("%w: needs %d qubits, limit is %d", ErrTooLarge, n, l.Qubits)
	}
	if n := p.Slots(); l.Slots > 0 && n > l.Slots {
		return fmt.Errorf("%w: writes %d slots, limit is %d", ErrTooLarge, n, l.Slots)
	}
	return nil
}

func (p *Program) qubits(s Step) []Address {
	switch payload, _ := domain.PayloadOf(s.Code); payload {
	case domain.PayloadQ, domain.PayloadQS:
		return []Address{s.Qubit}
	case domain.PayloadQQ:
		return []Address{s.Qubit, s.Target}
	}
	return nil
}

func (p *Program) addresses(s Step) []Address {
	addrs := p.qubits(s)
	if s.Code == domain.OpMeas {
		addrs = append(addrs, s.Slot)
	}
	return addrs
}

func decodeStep(raw any) (Step, error) {
	switch v := raw.(type) {
	case string:
		code, err := domain.ParseOpcode(v)
		if err != nil {
			return Step{}, err
		}
		if code != domain.OpInit {
			return Step{}, fmt.Errorf("%s needs operands", code)
		}
		return Step{Code: code}, nil
	case map[string]any:
		if len(v) != 1 {
			return Step{}, fmt.Errorf("expected a single operation name, got %d keys", len(v))
		}
		for name, args := range v {
			return decodeCall(name, args)
		}
	}
	return Step{}, fmt.Errorf("unexpected entry of type %T", raw)
}

func decodeCall(name string, args any) (Step, error) {
	code, err := domain.ParseOpcode(name)
	if err != nil {
		return Step{}, err
	}
	step := Step{Code: code}
	payload, _ := domain.PayloadOf(code)

	switch payload {
	case domain.PayloadNone:
		if args != nil {
			return Step{}, fmt.Errorf("%s takes no operands", code)
		}
	case domain.PayloadQ:
		step.Qubit, err = decodeAddress(args)
	case domain.PayloadQQ:
		step.Qubit, step.Target, err = decodePair(args)
	case domain.PayloadQS:
		step.Qubit, step.Slot, err = decodeMeasure(args)
	default:
		err = fmt.Errorf("%s cannot be written in a program", code)
	}
	if err != nil {
		return Step{}, fmt.Errorf("%s: %w", code, err)
	}
	return step, nil
}

func decodeInt(v any) (int, error) {
	var n int
	cfg := &mapstructure.DecoderConfig{WeaklyTypedInput: true, Result: &n}
	dec, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return 0, err
	}
	if err := dec.Decode(v); err != nil {
		return 0, fmt.Errorf("bad address %v: %w", v, err)
	}
	return n, nil
}

func decodeAddress(v any) (Address, error) {
	switch a := v.(type) {
	case []any:
		if len(a) != 2 {
			return Address{}, fmt.Errorf("grid address needs 2 coordinates, got %d", len(a))
		}
		x, err := decodeInt(a[0])
		if err != nil {
			return Address{}, err
		}
		y, err := decodeInt(a[1])
		if err != nil {
			return Address{}, err
		}
		return Address{X: x, Y: y}, nil
	case map[string]any:
		var addr Address
		if err := decodeStruct(a, &addr); err != nil {
			return Address{}, err
		}
		return addr, nil
	case nil:
		return Address{}, errors.New("missing address")
	}
	x, err := decodeInt(v)
	return Address{X: x}, err
}

// decodeStruct decodes a map into a struct with mapstructure, rejecting
// unknown keys.
func decodeStruct(in map[string]any, out any) error {
	cfg := &mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	}
	dec, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}
	return dec.Decode(in)
}

func decodePair(v any) (Address, Address, error) {
	switch a := v.(type) {
	case []any:
		if len(a) != 2 {
			return Address{}, Address{}, fmt.Errorf("expected [control, target], got %d operands", len(a))
		}
		c, err := decodeAddress(a[0])
		if err != nil {
			return Address{}, Address{}, err
		}
		t, err := decodeAddress(a[1])
		return c, t, err
	case map[string]any:
		var args struct {
			Control any `mapstructure:"control"`
			Target  any `mapstructure:"target"`
		}
		if err := decodeStruct(a, &args); err != nil {
			return Address{}, Address{}, err
		}
		c, err := decodeAddress(args.Control)
		if err != nil {
			return Address{}, Address{}, err
		}
		t, err := decodeAddress(args.Target)
		return c, t, err
	}
	return Address{}, Address{}, fmt.Errorf("expected [control, target], got %T", v)
}

func decodeMeasure(v any) (Address, Address, error) {
	if m, ok := v.(map[string]any); ok {
		if _, named := m["qubit"]; named {
			var args struct {
				Qubit any `mapstructure:"qubit"`
				Slot  any `mapstructure:"slot"`
			}
			if err := decodeStruct(m, &args); err != nil {
				return Address{}, Address{}, err
			}
			q, err := decodeAddress(args.Qubit)
			if err != nil {
				return Address{}, Address{}, err
			}
			if args.Slot == nil {
				return q, q, nil
			}
			s, err := decodeAddress(args.Slot)
			return q, s, err
		}
	}
	q, err := decodeAddress(v)
	return q, q, err
}
