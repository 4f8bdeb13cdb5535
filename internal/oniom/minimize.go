package oniom

import (
	"context"
	"errors"
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// MinResult summarises a finished minimisation.
type MinResult struct {
	X           []float64
	F           float64
	Evaluations int
	Status      optimize.Status
}

// objective adapts Evaluate to the split Func/Grad interface of
// gonum optimize. Both callbacks at the same point cost a single
// quartet of subprocess runs.
type objective struct {
	ctx context.Context
	ev  *Evaluator

	mu  sync.Mutex
	x   []float64
	f   float64
	g   []float64
	err error
}

func (o *objective) eval(x []float64) {
	if o.err != nil {
		return
	}
	if o.x != nil && floats.Equal(o.x, x) {
		return
	}
	f, g, err := o.ev.Evaluate(o.ctx, x)
	if err != nil {
		// optimize has no error path out of Func; poison the
		// value so it halts and surface err from Minimize
		o.err = err
		o.f = math.NaN()
		o.g = nil
		return
	}
	o.x = append(o.x[:0], x...)
	o.f = f
	o.g = g
}

func (o *objective) value(x []float64) float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.eval(x)
	return o.f
}

func (o *objective) grad(dst, x []float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.eval(x)
	if o.g == nil {
		for i := range dst {
			dst[i] = math.NaN()
		}
		return
	}
	copy(dst, o.g)
}

// Minimize drives the evaluator to a stationary point with LBFGS,
// starting from x0, until the gradient infinity norm drops below
// gradTol or maxIter major iterations pass.
func Minimize(ctx context.Context, ev *Evaluator, x0 []float64,
	maxIter int, gradTol float64) (*MinResult, error) {
	obj := &objective{ctx: ctx, ev: ev}
	problem := optimize.Problem{
		Func: obj.value,
		Grad: obj.grad,
	}
	settings := &optimize.Settings{
		MajorIterations:   maxIter,
		GradientThreshold: gradTol,
	}
	res, err := optimize.Minimize(problem, x0, settings, &optimize.LBFGS{})
	if obj.err != nil {
		return nil, obj.err
	}
	if err != nil {
		// a stalled line search near convergence still leaves a
		// usable, reportable geometry behind
		if res == nil || !errors.Is(err, optimize.ErrLinesearcherFailure) {
			return nil, err
		}
	}
	return &MinResult{
		X:           res.X,
		F:           res.F,
		Evaluations: res.FuncEvaluations,
		Status:      res.Status,
	}, nil
}
