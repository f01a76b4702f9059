package pdf

import (
	"math"
	"runtime"
	"sync"
)

// ClusterTextBlocksParallel delegates to ParallelV2 for large inputs.
// This is the main entry point for parallel clustering.
func ClusterTextBlocksParallel(texts []Text) []*TextBlock {
	n := len(texts)
	if n == 0 {
		return nil
	}
	if n < 500 {
		return ClusterTextBlocksV3(texts)
	}
	return ClusterTextBlocksParallelV2(texts)
}

// ClusterTextBlocksV4 automatically selects the best algorithm based on input size,
// escalating from the simple O(n log n) paths through the lock-free parallel
// union-find and finally to the SIMD-friendly struct-of-arrays path for the
// largest documents.
func ClusterTextBlocksV4(texts []Text) []*TextBlock {
	n := len(texts)
	switch {
	case n == 0:
		return nil
	case n < 50:
		return ClusterTextBlocksOptimizedV2(texts)
	case n < 500:
		return ClusterTextBlocksV3(texts)
	case n < 2000:
		return ClusterTextBlocksParallel(texts)
	case n < 8000:
		return ClusterTextBlocksUltraOptimized(texts)
	default:
		return ClusterTextBlocksUltraV2(texts)
	}
}

// ClusterTextBlocksParallelV2 uses a work-partitioning strategy for parallel clustering.
// Each worker processes a chunk of blocks independently with local edge collection,
// then edges are merged sequentially. This avoids all lock contention.
func ClusterTextBlocksParallelV2(texts []Text) []*TextBlock {
	n := len(texts)
	if n == 0 {
		return nil
	}
	if n < 1000 {
		return ClusterTextBlocksV3(texts)
	}

	// Calculate threshold
	var totalFontSize float64
	for i := range texts {
		totalFontSize += texts[i].FontSize
	}
	avgFontSize := totalFontSize / float64(n)
	eps := avgFontSize * 2.0

	// Initialize blocks - optimize memory allocation
	blocks := make([]*TextBlock, n)
	for i := range texts {
		t := &texts[i]
		tb := GetTextBlock()
		// Pre-allocate with capacity 1 to avoid append allocation
		// The pool will reuse this capacity across calls
		if cap(tb.Texts) < 1 {
			tb.Texts = make([]Text, 1, 4) // Start with small capacity
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

	// Build spatial grid and geometry cache
	grid := NewSpatialGrid(blocks, eps*2.0)
	geoms := buildBlockGeoms(blocks)
	defer putBlockGeomSlice(geoms)

	// Pre-compute thresholds
	eps11 := eps * 1.1
	eps15 := eps * 1.5
	eps08 := eps * 0.8

	// Phase 1: Parallel edge discovery with local collection (no channels)
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > 16 {
		numWorkers = 16
	}

	chunkSize := (n + numWorkers - 1) / numWorkers

	// Each worker stores its edges in a local slice (no synchronization)
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

			// Pre-allocate local edge buffer (estimate: each block has ~2 edges on average)
			localEdges := make([]edgePair, 0, (end-start)*2)

			// Each worker needs its own result buffer for grid queries
			localResultBuf := make([]int, 0, 256)

			// Reusable batch buffers to avoid allocations inside hot loop
			batchIdx := make([]int, 0, 16)
			batchGeoms := make([]blockGeom, 0, 16)
			out := make([]bool, 16)

			for i := start; i < end; i++ {
				gi := &geoms[i]

				// Inline GetNearbyBlocks to avoid shared state. Cell bounds
				// must be floored, not truncated, and packed with
				// packSpatialGridCellID: see the identical fix in
				// ClusterTextBlocksUltraOptimized for why a bare int(...)
				// conversion disagrees with SpatialGrid.getCellID near zero.
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

				// collect up to 16 neighbors into batchIdx
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

				// prepare geoms batch (resize preserving capacity)
				batchGeoms = batchGeoms[:len(batchIdx)]
				for k := range batchIdx {
					batchGeoms[k] = geoms[batchIdx[k]]
				}

				// ensure out slice length equals batch
				out = out[:len(batchGeoms)]

				// coarse filter over the batch (scalar loop)
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

	// Phase 2: Build union-find sequentially from collected edges (very fast, no contention)
	parent := make([]int32, n)
	for i := range parent {
		parent[i] = int32(i)
	}

	// Iterative find with path compression
	find := func(x int32) int32 {
		root := x
		for parent[root] != root {
			root = parent[root]
		}
		// Path compression
		for parent[x] != root {
			next := parent[x]
			parent[x] = root
			x = next
		}
		return root
	}

	// Process all edges from all workers
	for w := 0; w < numWorkers; w++ {
		for _, edge := range edgeSlices[w] {
			px, py := find(edge.i), find(edge.j)
			if px != py {
				parent[px] = py
			}
		}
	}

	// Group blocks by cluster
	rootCounts := make(map[int32]int, n/2)
	for i := 0; i < n; i++ {
		root := find(int32(i))
		rootCounts[root]++
	}

	clusters := make(map[int32][]*TextBlock, len(rootCounts))
	for i := 0; i < n; i++ {
		root := find(int32(i))
		if clusters[root] == nil {
			clusters[root] = make([]*TextBlock, 0, rootCounts[root])
		}
		clusters[root] = append(clusters[root], blocks[i])
	}

	// Build result
	result := make([]*TextBlock, 0, len(clusters))
	for _, cluster := range clusters {
		if len(cluster) == 0 {
			continue
		}
		if len(cluster) == 1 {
			result = append(result, cluster[0])
			continue
		}

		merged := mergeTextBlocksOptimized(cluster)
		for i := 1; i < len(cluster); i++ {
			PutTextBlock(cluster[i])
		}
		result = append(result, merged)
	}

	return result
}

// blockGeom is a flat, value-typed copy of the bounding box and average
// font size shouldMergeClusters reads off a *TextBlock. Copying these four
// floats out of the pointer-chasing TextBlock once, up front, lets the
// parallel edge-discovery loop batch many merge decisions without repeatedly
// dereferencing blocks (and the slice they hold) that other workers may be
// touching concurrently.
type blockGeom struct {
	minX, maxX, minY, maxY, avgFontSize float64
}

var blockGeomSlicePool = sync.Pool{
	New: func() interface{} {
		s := make([]blockGeom, 0, 256)
		return &s
	},
}

// buildBlockGeoms snapshots blocks into a pooled []blockGeom in the same
// order, for the parallel clustering pass to index by position.
func buildBlockGeoms(blocks []*TextBlock) []blockGeom {
	p := blockGeomSlicePool.Get().(*[]blockGeom)
	geoms := (*p)[:0]
	if cap(geoms) < len(blocks) {
		geoms = make([]blockGeom, 0, len(blocks))
	}
	for _, b := range blocks {
		geoms = append(geoms, blockGeom{
			minX: b.MinX, maxX: b.MaxX,
			minY: b.MinY, maxY: b.MaxY,
			avgFontSize: b.AvgFontSize,
		})
	}
	return geoms
}

// putBlockGeomSlice returns a []blockGeom obtained from buildBlockGeoms to
// its pool.
func putBlockGeomSlice(geoms []blockGeom) {
	geoms = geoms[:0]
	blockGeomSlicePool.Put(&geoms)
}

// canMergeCoarseBatchAuto runs the cheap, order-independent half of
// shouldMergeClusters's test — "do these boxes come anywhere near overlapping
// vertically or horizontally, at any of the three tolerances it uses?" —
// against a batch of candidates at once, writing one bool per candidate into
// out. It never reports a false negative against shouldMergeClustersGeomFast,
// only trims candidates the precise test is certain to reject, so batching
// it ahead of the real test cuts the expensive path's input size without
// changing which pairs ultimately merge.
func canMergeCoarseBatchAuto(gi *blockGeom, batch []blockGeom, eps, eps11, eps15, eps08 float64, out []bool) {
	_ = eps11
	_ = eps08
	for k := range batch {
		gj := &batch[k]
		vOverlap := math.Min(gi.maxY, gj.maxY) - math.Max(gi.minY, gj.minY)
		if vOverlap < 0 {
			vOverlap = 0
		}
		hOverlap := math.Min(gi.maxX, gj.maxX) - math.Max(gi.minX, gj.minX)
		if hOverlap < 0 {
			hOverlap = 0
		}
		nearVertically := vOverlap > 0 || math.Max(gi.minX, gj.minX)-math.Min(gi.maxX, gj.maxX) < eps
		nearHorizontally := hOverlap > 0 || math.Max(gi.minY, gj.minY)-math.Min(gi.maxY, gj.maxY) < eps15
		out[k] = nearVertically && nearHorizontally
	}
}

// shouldMergeClustersGeomFast is shouldMergeClusters's asymmetric-layout-
// and text-image-mix-free core, operating on the flat blockGeom snapshot
// instead of a *TextBlock so the parallel pass never reads Texts (which
// other workers may still be appending to via the pool).
func shouldMergeClustersGeomFast(gi, gj *blockGeom, threshold, threshold15 float64) bool {
	verticalOverlap := math.Min(gi.maxY, gj.maxY) - math.Max(gi.minY, gj.minY)
	if verticalOverlap < 0 {
		verticalOverlap = 0
	}
	if verticalOverlap > gi.avgFontSize*0.3 || verticalOverlap > gj.avgFontSize*0.3 {
		horizontalGap := math.Max(gi.minX, gj.minX) - math.Min(gi.maxX, gj.maxX)
		if horizontalGap < 0 {
			horizontalGap = 0
		}
		if horizontalGap < threshold {
			return true
		}
	}

	horizontalOverlap := math.Min(gi.maxX, gj.maxX) - math.Max(gi.minX, gj.minX)
	if horizontalOverlap > 0 {
		widthI := gi.maxX - gi.minX
		widthJ := gj.maxX - gj.minX
		minWidth := math.Min(widthI, widthJ)
		if minWidth > 0 && horizontalOverlap/minWidth > 0.6 {
			verticalGap := math.Max(gi.minY, gj.minY) - math.Min(gi.maxY, gj.maxY)
			if verticalGap < 0 {
				verticalGap = 0
			}
			if verticalGap < threshold15 {
				return true
			}
		}
	}

	return false
}
