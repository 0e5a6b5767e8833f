// Package arith provides the integer arithmetic example tools.
package arith

import (
	"context"

	"github.com/hamzaessahbaoui/agentic-toolkit/toolkit"
)

// Summation adds two integers.
func Summation(_ context.Context, args SumArgs) (int, error) {
	return args.X + args.Y, nil
}

// Multiplication multiplies two integers.
func Multiplication(_ context.Context, args ProductArgs) (int, error) {
	return args.X * args.Y, nil
}

// Register adds the summation and multiplication tools to tk.
func Register(tk *toolkit.Toolkit) error {
	sum, err := toolkit.NewTool("summation", "Add two integers.", Summation)
	if err != nil {
		return err
	}
	product, err := toolkit.NewTool("multiplication", "Multiply two integers.", Multiplication)
	if err != nil {
		return err
	}
	for _, d := range []*toolkit.Descriptor{sum, product} {
		if _, err := tk.Register(d); err != nil {
			return err
		}
	}
	return nil
}
