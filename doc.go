// Package tabgo provides preprocessing primitives and neural backbones for
// tabular deep learning in Go.
//
// The preprocessing package converts continuous features into bin indices
// and two encodings built on them: a monotone ordinal (thermometer) code
// and its smooth piecewise-linear generalization. Bin edges come from
// either uniform quantiles or supervised decision-tree splits. The nn
// package provides MLP and ResNet backbones that consume the encodings.
//
// # Quick start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/tabgo/preprocessing"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
//
//	    enc := preprocessing.NewPiecewiseLinearEncoder(2, preprocessing.QuantileStrategy)
//	    features, err := enc.FitTransform(X, nil)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(mat.Formatted(features))
//	}
//
// The pure functions behind the estimators are exported as well; see the
// preprocessing package documentation.
package tabgo
