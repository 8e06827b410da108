// Copyright ©2025 The wavetile Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wavetile provides register tiles for 64-lane waves on an emulated
// CDNA-class device.
//
// A Tile is a rows x cols matrix whose elements are spread over the private
// registers of the 64 lanes of one wave. Tiles are built from a grid of
// 32x16 base tiles and carry their lane layout (Row or Col) in their type.
// The transfer engine moves tiles between device memory and registers:
//
//	a := wavetile.MustTile[wavetile.BF16, wavetile.Row](32, 16)
//	b := wavetile.MustTile[wavetile.BF16, wavetile.Row](32, 16)
//	c := wavetile.MustTile[float32, wavetile.Col](32, 32)
//
//	wavetile.Load(a, viewA, wavetile.Coord{})
//	wavetile.Load(b, viewB, wavetile.Coord{})
//	c.Zero()
//	if err := wavetile.MatmulABt(c, a, b); err != nil {
//	    return err
//	}
//	return wavetile.Store(viewC, c, wavetile.Coord{})
//
// MatmulABt lowers to the 32x32x8 MFMA instruction, modelled by MFMA32x32x8
// with the vendor's operand and result lane layout. Store applies the fixed
// Swizzle row permutation that returns MFMA results to row-major order.
//
// Device memory, streams and kernel launch follow the CUDA runtime shape:
// Malloc, Memcpy, Launch and Synchronize. Tile shape errors are reported
// before any data moves; runtime failures surface as device faults from
// Synchronize.
package wavetile
