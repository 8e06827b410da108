// Package wavetile reference implementations for verification
package wavetile

// Reference contains plain nested-loop implementations used as test oracles
// for device results. They run on host slices and are not part of the tile
// contract.
type Reference struct{}

// MatmulABt performs C = A*B^T + C with A m x k, B n x k and C m x n, all
// row-major. Accumulation is float32 in k order.
func (r Reference) MatmulABt(m, n, k int, a, b, c []float32) {
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			sum := float32(0)
			for l := 0; l < k; l++ {
				sum += a[i*k+l] * b[j*k+l]
			}
			c[i*n+j] += sum
		}
	}
}

// Round returns x rounded through T and widened back, the values a device
// actually multiplies after inputs are narrowed.
func Round[T Element](x []float32) []float32 {
	out := make([]float32, len(x))
	for i, v := range x {
		out[i] = ToFloat32(FromFloat32[T](v))
	}
	return out
}

// NarrowSlice converts x element-wise to T.
func NarrowSlice[T Element](x []float32) []T {
	out := make([]T, len(x))
	for i, v := range x {
		out[i] = FromFloat32[T](v)
	}
	return out
}
