package graphcycle

import (
	"fmt"
	"strings"
)

type visitState uint8

const (
	stateVisiting visitState = iota + 1
	stateDone
)

// MissingPolicy controls behavior when a referenced node is missing.
type MissingPolicy uint8

const (
	MissingPolicyIgnore MissingPolicy = iota
	MissingPolicyError
)

// CycleError reports a cycle closing at Key. Path lists the nodes of the
// cycle in traversal order, starting and ending with Key.
type CycleError[K comparable] struct {
	Key  K
	Path []K
}

// Error returns the error string.
func (e CycleError[K]) Error() string {
	if len(e.Path) == 0 {
		return "cycle detected"
	}
	parts := make([]string, len(e.Path))
	for i, k := range e.Path {
		parts[i] = fmt.Sprint(k)
	}
	return "cycle detected: " + strings.Join(parts, " -> ")
}

// MissingError reports a missing referenced node.
type MissingError[K comparable] struct {
	From K
	Key  K
}

// Error returns the error string.
func (e MissingError[K]) Error() string {
	return fmt.Sprintf("missing node %v (referenced from %v)", e.Key, e.From)
}

// Config configures generic cycle detection traversal.
type Config[K comparable] struct {
	Exists  func(K) bool
	Next    func(K) ([]K, error)
	Starts  []K
	Missing MissingPolicy
}

// Detect walks directed edges from Starts and reports first cycle or traversal error.
func Detect[K comparable](cfg Config[K]) error {
	if cfg.Next == nil {
		return fmt.Errorf("cycle detect: next function is nil")
	}
	states := make(map[K]visitState, len(cfg.Starts))
	var path []K

	var zero K
	var visit func(key, from K, hasFrom bool) error
	visit = func(key, from K, hasFrom bool) error {
		switch states[key] {
		case stateVisiting:
			return CycleError[K]{Key: key, Path: cyclePath(path, key)}
		case stateDone:
			return nil
		}

		exists := true
		if cfg.Exists != nil {
			exists = cfg.Exists(key)
		}
		if !exists {
			if cfg.Missing == MissingPolicyIgnore {
				return nil
			}
			if !hasFrom {
				from = zero
			}
			return MissingError[K]{From: from, Key: key}
		}

		states[key] = stateVisiting
		path = append(path, key)
		neighbors, err := cfg.Next(key)
		if err != nil {
			return err
		}
		for _, next := range neighbors {
			if err := visit(next, key, true); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		states[key] = stateDone
		return nil
	}

	for _, start := range cfg.Starts {
		if err := visit(start, zero, false); err != nil {
			return err
		}
	}

	return nil
}

// DetectAll reports every distinct cycle reachable from Starts. Nodes on a
// reported cycle are not revisited, so each cycle is reported once.
func DetectAll[K comparable](cfg Config[K]) ([]CycleError[K], error) {
	var cycles []CycleError[K]
	onCycle := make(map[K]bool)
	for _, start := range cfg.Starts {
		if onCycle[start] {
			continue
		}
		sub := cfg
		sub.Starts = []K{start}
		sub.Next = func(k K) ([]K, error) {
			next, err := cfg.Next(k)
			if err != nil {
				return nil, err
			}
			out := next[:0:0]
			for _, n := range next {
				if !onCycle[n] {
					out = append(out, n)
				}
			}
			return out, nil
		}
		err := Detect(sub)
		if err == nil {
			continue
		}
		cycle, ok := err.(CycleError[K])
		if !ok {
			return cycles, err
		}
		for _, k := range cycle.Path {
			onCycle[k] = true
		}
		cycles = append(cycles, cycle)
	}
	return cycles, nil
}

func cyclePath[K comparable](path []K, key K) []K {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == key {
			out := make([]K, 0, len(path)-i+1)
			out = append(out, path[i:]...)
			return append(out, key)
		}
	}
	return []K{key, key}
}
