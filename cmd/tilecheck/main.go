// Copyright ©2025 The wavetile Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command tilecheck runs a wave-tile matmul on the emulated device and
// verifies it against the host reference.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	"k8s.io/klog/v2"

	"github.com/LynnColeArt/wavetile"
)

func main() {
	klog.InitFlags(nil)
	var (
		m      = flag.Int("m", 64, "Rows of A and C (multiple of 32)")
		n      = flag.Int("n", 64, "Rows of B and columns of C (multiple of 32)")
		dtype  = flag.String("type", "bf16", "Input element type: bf16 or f16")
		seed   = flag.Int64("seed", 1, "Random seed for the inputs")
		target = flag.String("target", "mi300", "Device generation: mi300 or mi355x")
	)
	flag.Parse()
	defer klog.Flush()

	t, ok := wavetile.ParseTarget(*target)
	if !ok {
		klog.Exitf("unknown target %q", *target)
	}
	cfg := wavetile.DefaultConfig()
	cfg.Target = t

	var (
		res wavetile.VerificationResult
		err error
	)
	switch *dtype {
	case "bf16":
		res, err = run[wavetile.BF16](cfg, *m, *n, *seed)
	case "f16":
		res, err = run[wavetile.Half](cfg, *m, *n, *seed)
	default:
		klog.Exitf("unknown type %q", *dtype)
	}
	if err != nil {
		klog.Exitf("tilecheck: %v", err)
	}

	fmt.Printf("%s %dx%dx%d on %s\n", *dtype, *m, *n, wavetile.TileCols, t)
	fmt.Println(res)
	if !res.OK() {
		os.Exit(1)
	}
}

// run multiplies random m x 16 and n x 16 matrices on the device, one wave
// per 32-row stripe of C, and compares C with the reference.
func run[T wavetile.Narrow](cfg wavetile.Config, m, n int, seed int64) (wavetile.VerificationResult, error) {
	const k = wavetile.TileCols
	if m <= 0 || n <= 0 || m%wavetile.TileRows != 0 || n%wavetile.BlockCols != 0 {
		return wavetile.VerificationResult{}, fmt.Errorf("m=%d n=%d must be positive multiples of 32", m, n)
	}

	ctx := wavetile.NewContext(cfg)
	defer ctx.Destroy()

	rng := rand.New(rand.NewSource(seed))
	hA, hB := randomMatrix(rng, m*k), randomMatrix(rng, n*k)

	dA, err := upload(ctx, wavetile.NarrowSlice[T](hA))
	if err != nil {
		return wavetile.VerificationResult{}, err
	}
	dB, err := upload(ctx, wavetile.NarrowSlice[T](hB))
	if err != nil {
		return wavetile.VerificationResult{}, err
	}
	dC, err := ctx.Malloc(m * n * 4)
	if err != nil {
		return wavetile.VerificationResult{}, err
	}

	viewA, err := wavetile.NewView[T](dA, 1, 1, m, k)
	if err != nil {
		return wavetile.VerificationResult{}, err
	}
	viewB, err := wavetile.NewView[T](dB, 1, 1, n, k)
	if err != nil {
		return wavetile.VerificationResult{}, err
	}
	viewC, err := wavetile.NewView[float32](dC, 1, 1, m, n)
	if err != nil {
		return wavetile.VerificationResult{}, err
	}

	kernel := func(w *wavetile.Wave) error {
		a := wavetile.MustTile[T, wavetile.Row](wavetile.TileRows, k)
		b := wavetile.MustTile[T, wavetile.Row](n, k)
		c := wavetile.MustTile[float32, wavetile.Col](wavetile.TileRows, n)

		wavetile.Load(a, viewA, wavetile.Coord{R: w.ID})
		wavetile.Load(b, viewB, wavetile.Coord{})
		c.Zero()
		if err := wavetile.MatmulABt(c, a, b); err != nil {
			return err
		}
		return wavetile.Store(viewC, c, wavetile.Coord{R: w.ID})
	}
	if err := ctx.Launch(m/wavetile.TileRows, kernel); err != nil {
		return wavetile.VerificationResult{}, err
	}
	if err := ctx.Synchronize(); err != nil {
		return wavetile.VerificationResult{}, err
	}

	got := make([]float32, m*n)
	if err := ctx.Memcpy(got, dC, m*n*4, wavetile.MemcpyDeviceToHost); err != nil {
		return wavetile.VerificationResult{}, err
	}
	want := make([]float32, m*n)
	wavetile.Reference{}.MatmulABt(m, n, k, wavetile.Round[T](hA), wavetile.Round[T](hB), want)

	return wavetile.VerifyFloat32Array(want, got, wavetile.MatmulTolerance()), nil
}

func upload[T wavetile.Narrow](ctx *wavetile.Context, host []T) (wavetile.DevicePtr, error) {
	bytes := len(host) * 2
	d, err := ctx.Malloc(bytes)
	if err != nil {
		return wavetile.DevicePtr{}, err
	}
	return d, ctx.Memcpy(d, host, bytes, wavetile.MemcpyHostToDevice)
}

func randomMatrix(rng *rand.Rand, size int) []float32 {
	out := make([]float32, size)
	for i := range out {
		out[i] = rng.Float32()*2 - 1
	}
	return out
}
