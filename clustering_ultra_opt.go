// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"math"
	"runtime"
	"sync"
)

// ClusterTextBlocksUltraOptimized is the highest-throughput clustering path:
// a parallel spatial-grid union-find that trades some code density for
// minimal allocation and GC pressure on large documents.
func ClusterTextBlocksUltraOptimized(texts []Text) []*TextBlock {
	n := len(texts)
	if n == 0 {
		return nil
	}

	// Parallel setup isn't worth it below this size; fall back to V3.
	if n < 1000 {
		return ClusterTextBlocksV3(texts)
	}

	var totalFontSize float64
	for i := range texts {
		totalFontSize += texts[i].FontSize
	}
	avgFontSize := totalFontSize / float64(n)
	eps := avgFontSize * 2.0

	// Build blocks in place rather than through append, since the target
	// length (1) is already known.
	blocks := make([]*TextBlock, n)
	for i := range texts {
		t := &texts[i]
		tb := GetTextBlock()

		if cap(tb.Texts) == 0 {
			tb.Texts = make([]Text, 1, 8)
		} else {
			tb.Texts = tb.Texts[:1]
		}
		tb.Texts[0] = *t

		tb.MinX = t.X
		tb.MaxX = t.X + t.W
		tb.MinY = t.Y
		tb.MaxY = t.Y + t.FontSize
		tb.AvgFontSize = t.FontSize
		blocks[i] = tb
	}

	grid := NewSpatialGrid(blocks, eps*2.0)
	geoms := buildBlockGeoms(blocks)
	defer putBlockGeomSlice(geoms)

	eps11 := eps * 1.1
	eps15 := eps * 1.5
	eps08 := eps * 0.8

	// Phase 1: parallel edge discovery. Each worker accumulates edges into
	// its own local slice so there's no shared-state synchronization until
	// the edges are unioned sequentially in phase 2.
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > 16 {
		numWorkers = 16
	}

	chunkSize := (n + numWorkers - 1) / numWorkers

	type edgePair struct{ i, j int32 }
	edgeSlices := make([][]edgePair, numWorkers)

	var wg sync.WaitGroup
	wg.Add(numWorkers)

	for w := 0; w < numWorkers; w++ {
		go func(workerID int) {
			defer wg.Done()

			start := workerID * chunkSize
			end := start + chunkSize
			if end > n {
				end = n
			}
			if start >= n {
				return
			}

			localEdges := make([]edgePair, 0, (end-start)*2)
			localResultBuf := make([]int, 0, 256)

			// Reused per-iteration batch buffers, to avoid allocating in
			// the hot loop.
			batchIdx := make([]int, 0, 16)
			batchGeoms := make([]blockGeom, 0, 16)
			out := make([]bool, 16)

			for i := start; i < end; i++ {
				gi := &geoms[i]

				// Inlined GetNearbyBlocks to avoid touching shared grid
				// state through a method call per text block. Cell bounds
				// are floored exactly like SpatialGrid.getCellID: a bare
				// int(...) conversion truncates toward zero instead of
				// flooring, which disagrees with getCellID for negative
				// coordinates and would silently look up the wrong cells
				// (and so miss real merge candidates) for any block whose
				// bounds straddle zero.
				localResultBuf = localResultBuf[:0]
				minCX := int64(math.Floor((gi.minX - grid.cellSize) / grid.cellSize))
				maxCX := int64(math.Floor((gi.maxX + grid.cellSize) / grid.cellSize))
				minCY := int64(math.Floor((gi.minY - grid.cellSize) / grid.cellSize))
				maxCY := int64(math.Floor((gi.maxY + grid.cellSize) / grid.cellSize))

				for cy := minCY; cy <= maxCY; cy++ {
					for cx := minCX; cx <= maxCX; cx++ {
						key := packSpatialGridCellID(cx, cy)
						if cell, ok := grid.cells[key]; ok {
							localResultBuf = append(localResultBuf, cell...)
						}
					}
				}

				// Collect up to 16 forward neighbors into batchIdx.
				batchIdx = batchIdx[:0]
				for _, jj := range localResultBuf {
					if jj <= i {
						continue
					}
					batchIdx = append(batchIdx, jj)
					if len(batchIdx) >= cap(batchIdx) {
						break
					}
				}

				if len(batchIdx) == 0 {
					continue
				}

				// Resize the geometry batch to match, keeping capacity.
				batchGeoms = batchGeoms[:len(batchIdx)]
				for k := range batchIdx {
					batchGeoms[k] = geoms[batchIdx[k]]
				}

				out = out[:len(batchGeoms)]

				// Coarse filter over the batch (a scalar loop).
				canMergeCoarseBatchAuto(gi, batchGeoms, eps, eps11, eps15, eps08, out)

				for k, ok := range out {
					if !ok {
						continue
					}
					j := batchIdx[k]
					gj := &geoms[j]
					if shouldMergeClustersGeomFast(gi, gj, eps, eps15) {
						localEdges = append(localEdges, edgePair{int32(i), int32(j)})
					}
				}
			}
			edgeSlices[workerID] = localEdges
		}(w)
	}

	wg.Wait()

	// Phase 2: build the union-find from the collected edges sequentially.
	// This is fast and contention-free since every edge is already in hand.
	parent := make([]int32, n)
	for i := range parent {
		parent[i] = int32(i)
	}

	var find func(int32) int32
	find = func(x int32) int32 {
		if parent[x] != x {
			parent[x] = find(parent[x]) // path compression
		}
		return parent[x]
	}

	union := func(x, y int32) {
		px, py := find(x), find(y)
		if px != py {
			parent[px] = py
		}
	}

	for _, edges := range edgeSlices {
		for _, e := range edges {
			union(e.i, e.j)
		}
	}

	// Phase 3: merge blocks that ended up in the same cluster.
	clusterMap := make(map[int32]*TextBlock)
	for i := range blocks {
		root := find(int32(i))
		if merged, exists := clusterMap[root]; exists {
			// Merge directly into the existing block's Texts slice.
			oldLen := len(merged.Texts)
			newLen := oldLen + len(blocks[i].Texts)

			if cap(merged.Texts) < newLen {
				// Grow with 25% headroom to absorb further merges.
				newCap := newLen + newLen/4
				newTexts := make([]Text, newLen, newCap)
				copy(newTexts, merged.Texts)
				merged.Texts = newTexts
			} else {
				merged.Texts = merged.Texts[:newLen]
			}

			copy(merged.Texts[oldLen:], blocks[i].Texts)

			if blocks[i].MinX < merged.MinX {
				merged.MinX = blocks[i].MinX
			}
			if blocks[i].MaxX > merged.MaxX {
				merged.MaxX = blocks[i].MaxX
			}
			if blocks[i].MinY < merged.MinY {
				merged.MinY = blocks[i].MinY
			}
			if blocks[i].MaxY > merged.MaxY {
				merged.MaxY = blocks[i].MaxY
			}

			totalSize := merged.AvgFontSize*float64(oldLen) + blocks[i].AvgFontSize*float64(len(blocks[i].Texts))
			merged.AvgFontSize = totalSize / float64(newLen)

			PutTextBlock(blocks[i])
		} else {
			clusterMap[root] = blocks[i]
		}
	}

	result := make([]*TextBlock, 0, len(clusterMap))
	for _, block := range clusterMap {
		result = append(result, block)
	}

	return result
}
