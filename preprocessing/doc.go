// Package preprocessing converts continuous tabular features into
// discretized bin indices and encodings suitable as neural-network input.
//
// The pipeline is:
//
//	edges := ComputeQuantileBinEdges(X, nBins)        // or ComputeDecisionTreeBinEdges
//	idx   := ComputeBinIndices(Xt, edges)             // training or inference data
//	vals  := ComputePiecewiseLinearBinValues(Xt, idx, edges)
//	enc   := PiecewiseLinearEncoding(vals, idx, d)    // or OrdinalBinaryEncoding(idx, d)
//
// Bin membership is edges[i] <= x < edges[i+1]; the first and last edge act
// as -Inf/+Inf at lookup time, so out-of-range values land in the extreme
// bins instead of erroring. All functions are pure and process columns
// independently.
//
// Every function exists in two backend flavors with identical semantics: a
// generic form over core/tensor containers and a Dense form over gonum
// matrices. Encoding Dense forms return the (n_objects, n_features*d)
// flattening consumed by linear layers.
package preprocessing
