package piecetree

import "github.com/kisielk-labs/scribe/stringpool"

// ByteRange is a half-open [Start, End) byte range.
type ByteRange struct {
	Start, End int
}

// LineRange is a half-open [Start, End) 0-indexed line range.
type LineRange struct {
	Start, End int
}

// Diff summarizes the difference between two piece tree roots.
type Diff struct {
	Equal bool
	// ByteRanges is empty iff Equal.
	ByteRanges []ByteRange
	// LineRanges is valid only when LineRangesKnown; it is nil when any
	// consulted leaf had an unscanned line-feed count.
	LineRanges      []LineRange
	LineRangesKnown bool
	// NodesVisited is reported for observability and tests: it should be
	// proportional to the edited region, not the size of either tree,
	// when structural sharing between before and after is intact.
	NodesVisited int
}

// DiffTrees reports the byte (and, where known, line) ranges of after
// that differ from before. It uses pointer-identity short-circuiting to
// skip subtrees the two trees share, so the cost after a path-copy edit
// is proportional to the edited path rather than the document size.
func DiffTrees(before, after *Tree) Diff {
	if before.root == after.root {
		return Diff{Equal: true, LineRanges: []LineRange{}, LineRangesKnown: true, NodesVisited: 1}
	}

	var beforeSpans, afterSpans []span
	nodesVisited := 0
	beforeDocOffset, afterDocOffset := 0, 0
	afterDocLF, afterDocLFKnown := 0, true

	diffCollectLeaves(before.root, after.root,
		&beforeSpans, &afterSpans, &nodesVisited,
		&beforeDocOffset, &afterDocOffset, &afterDocLF, &afterDocLFKnown)

	beforeSpans = normalizeSpans(beforeSpans)
	afterSpans = normalizeSpans(afterSpans)

	if spanSlicesEqual(beforeSpans, afterSpans) {
		return Diff{Equal: true, LineRanges: []LineRange{}, LineRangesKnown: true, NodesVisited: nodesVisited}
	}

	prefix := commonPrefixBytes(beforeSpans, afterSpans)
	suffix := commonSuffixBytes(beforeSpans, afterSpans, prefix)
	ranges := collectDiffRanges(beforeSpans, afterSpans, prefix, suffix)

	lineRanges, lineRangesKnown := computeLineRanges(after.pool, afterSpans, ranges)

	return Diff{
		Equal:           false,
		ByteRanges:      ranges,
		LineRanges:      lineRanges,
		LineRangesKnown: lineRangesKnown,
		NodesVisited:    nodesVisited,
	}
}

type span struct {
	location    stringpool.BufferLocation
	offset      int
	bytesLen    int
	docOffset   int
	docLFOffset int
}

func diffCollectLeaves(
	before, after *Node,
	beforeOut, afterOut *[]span,
	nodesVisited *int,
	beforeDocOffset, afterDocOffset *int,
	afterDocLF *int, afterDocLFKnown *bool,
) {
	*nodesVisited += 2

	if before == after {
		n := before.Bytes()
		*beforeDocOffset += n
		*afterDocOffset += n
		if lf, ok := after.LineFeeds(); ok && *afterDocLFKnown {
			*afterDocLF += lf
		} else {
			*afterDocLFKnown = false
		}
		return
	}

	bInternal := before != nil && !before.IsLeaf()
	aInternal := after != nil && !after.IsLeaf()
	if bInternal && aInternal {
		diffCollectLeaves(before.left, after.left, beforeOut, afterOut, nodesVisited,
			beforeDocOffset, afterDocOffset, afterDocLF, afterDocLFKnown)
		diffCollectLeaves(before.right, after.right, beforeOut, afterOut, nodesVisited,
			beforeDocOffset, afterDocOffset, afterDocLF, afterDocLFKnown)
		return
	}

	dummyLF, dummyKnown := 0, true
	collectLeavesWithOffsets(before, beforeOut, nodesVisited, beforeDocOffset, &dummyLF, &dummyKnown)
	collectLeavesWithOffsets(after, afterOut, nodesVisited, afterDocOffset, afterDocLF, afterDocLFKnown)
}

func collectLeavesWithOffsets(n *Node, out *[]span, nodesVisited *int, docOffset *int, docLF *int, docLFKnown *bool) {
	if n == nil {
		return
	}
	*nodesVisited++
	if n.IsLeaf() {
		lfOffset := 0
		if *docLFKnown {
			lfOffset = *docLF
		}
		*out = append(*out, span{
			location:    n.location,
			offset:      n.offset,
			bytesLen:    n.bytesLen,
			docOffset:   *docOffset,
			docLFOffset: lfOffset,
		})
		*docOffset += n.bytesLen
		if *docLFKnown && n.lfKnown {
			*docLF += n.lineFeedCnt
		} else {
			*docLFKnown = false
		}
		return
	}
	collectLeavesWithOffsets(n.left, out, nodesVisited, docOffset, docLF, docLFKnown)
	collectLeavesWithOffsets(n.right, out, nodesVisited, docOffset, docLF, docLFKnown)
}

func spansEqual(a, b span) bool {
	return a.location == b.location && a.offset == b.offset && a.bytesLen == b.bytesLen
}

func spanSlicesEqual(a, b []span) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !spansEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// normalizeSpans coalesces adjacent spans that reference contiguous
// bytes of the same chunk at a contiguous document offset, defeating
// cosmetic differences from different tree shapes.
func normalizeSpans(spans []span) []span {
	if len(spans) == 0 {
		return spans
	}
	normalized := make([]span, 0, len(spans))
	current := spans[0]
	for _, s := range spans[1:] {
		contiguous := current.location == s.location &&
			current.offset+current.bytesLen == s.offset &&
			current.docOffset+current.bytesLen == s.docOffset
		if contiguous {
			current.bytesLen += s.bytesLen
		} else {
			normalized = append(normalized, current)
			current = s
		}
	}
	normalized = append(normalized, current)
	return normalized
}

// commonPrefixBytes walks both span lists from the start, matching by
// (location, buffer-relative position, document offset). The document
// offset check keeps an earlier edit from making two spans that
// reference the same bytes count as a matching prefix.
func commonPrefixBytes(before, after []span) int {
	bIdx, aIdx := 0, 0
	bOff, aOff := 0, 0
	consumed := 0

	for bIdx < len(before) && aIdx < len(after) {
		b, a := before[bIdx], after[aIdx]
		bPos := b.offset + bOff
		aPos := a.offset + aOff

		if b.location == a.location && bPos == aPos && (b.docOffset+bOff) == (a.docOffset+aOff) {
			bRem, aRem := b.bytesLen-bOff, a.bytesLen-aOff
			take := minInt(bRem, aRem)
			consumed += take
			bOff += take
			aOff += take
			if bOff == b.bytesLen {
				bIdx++
				bOff = 0
			}
			if aOff == a.bytesLen {
				aIdx++
				aOff = 0
			}
		} else {
			break
		}
	}
	return consumed
}

// commonSuffixBytes walks both span lists from the end, matching only by
// (location, buffer-relative position): suffix bytes shift in document
// offset under an earlier edit but still hold the same data.
func commonSuffixBytes(before, after []span, prefix int) int {
	totalBefore := 0
	if len(before) > 0 {
		last := before[len(before)-1]
		totalBefore = last.docOffset + last.bytesLen
	}
	totalAfter := 0
	if len(after) > 0 {
		last := after[len(after)-1]
		totalAfter = last.docOffset + last.bytesLen
	}

	bIdx, aIdx := len(before)-1, len(after)-1
	bOff, aOff := 0, 0
	consumed := 0

	for bIdx >= 0 && aIdx >= 0 && (totalBefore-consumed) > prefix && (totalAfter-consumed) > prefix {
		b, a := before[bIdx], after[aIdx]
		bPos := b.offset + b.bytesLen - bOff
		aPos := a.offset + a.bytesLen - aOff

		if b.location == a.location && bPos == aPos {
			bRem, aRem := b.bytesLen-bOff, a.bytesLen-aOff
			take := minInt(bRem, aRem)
			consumed += take
			bOff += take
			aOff += take
			if bOff == b.bytesLen {
				bIdx--
				bOff = 0
			}
			if aOff == a.bytesLen {
				aIdx--
				aOff = 0
			}
		} else {
			break
		}
	}

	cap := totalAfter - prefix
	if cap < 0 {
		cap = 0
	}
	return minInt(consumed, cap)
}

func collectDiffRanges(before, after []span, prefix, suffix int) []ByteRange {
	var ranges []ByteRange
	bIdx, aIdx := 0, 0
	bOff, aOff := 0, 0
	matchedPrefix := 0

	for matchedPrefix < prefix && bIdx < len(before) && aIdx < len(after) {
		b, a := before[bIdx], after[aIdx]
		bRem, aRem := b.bytesLen-bOff, a.bytesLen-aOff
		take := minInt(minInt(bRem, aRem), prefix-matchedPrefix)
		matchedPrefix += take
		bOff += take
		aOff += take
		if bOff == b.bytesLen {
			bIdx++
			bOff = 0
		}
		if aOff == a.bytesLen {
			aIdx++
			aOff = 0
		}
	}

	docEnd := 0
	if len(after) > 0 {
		last := after[len(after)-1]
		docEnd = last.docOffset + last.bytesLen
	}
	compareLimit := docEnd - suffix
	if compareLimit < 0 {
		compareLimit = 0
	}
	docStart := 0
	if len(after) > 0 {
		docStart = after[0].docOffset
	}

	var currentStart *int
	currentEnd := 0

	for aIdx < len(after) {
		a := after[aIdx]
		pos := a.docOffset + aOff
		if pos >= compareLimit {
			break
		}

		if currentStart != nil && pos > currentEnd {
			ranges = append(ranges, ByteRange{*currentStart, currentEnd})
			currentStart = nil
		}

		matches := false
		if bIdx < len(before) {
			b := before[bIdx]
			bPos := b.offset + bOff
			aPos := a.offset + aOff
			matches = b.location == a.location && bPos == aPos
		}

		if matches {
			if currentStart != nil {
				ranges = append(ranges, ByteRange{*currentStart, currentEnd})
				currentStart = nil
			}
			b := before[bIdx]
			bRem, aRem := b.bytesLen-bOff, a.bytesLen-aOff
			take := minInt(minInt(bRem, aRem), compareLimit-pos)
			bOff += take
			aOff += take
			if bOff == b.bytesLen {
				bIdx++
				bOff = 0
			}
			if aOff == a.bytesLen {
				aIdx++
				aOff = 0
			}
		} else {
			if currentStart == nil {
				start := pos
				currentStart = &start
			}
			take := minInt(a.bytesLen-aOff, compareLimit-pos)
			currentEnd = pos + take
			aOff += take
			if aOff == a.bytesLen {
				aIdx++
				aOff = 0
			}
		}
	}

	if currentStart != nil {
		ranges = append(ranges, ByteRange{*currentStart, currentEnd})
	}

	for aIdx < len(after) {
		start := after[aIdx].docOffset + aOff
		if start >= compareLimit {
			break
		}
		end := minInt(after[aIdx].docOffset+after[aIdx].bytesLen, compareLimit)
		ranges = append(ranges, ByteRange{start, end})
		aIdx++
		aOff = 0
	}

	if len(ranges) == 0 {
		// Anchor range: the edit shortened the document (pure deletion)
		// or the trees are equal between prefix and suffix.
		ranges = append(ranges, ByteRange{docStart + prefix, compareLimit})
	}

	return ranges
}

func countLinesInRange(pool *stringpool.Pool, spans []span, start, end int) (int, bool) {
	if start >= end {
		return 0, true
	}
	total := 0
	for _, s := range spans {
		spanStart := s.docOffset
		spanEnd := spanStart + s.bytesLen
		if end <= spanStart {
			break
		}
		if start >= spanEnd {
			continue
		}
		overlapStart := maxInt(start, spanStart)
		overlapEnd := minInt(end, spanEnd)
		localStart := overlapStart - spanStart
		length := overlapEnd - overlapStart

		n, ok := pool.LineFeedCount(s.location, s.offset+localStart, length)
		if !ok {
			return 0, false
		}
		total += n
	}
	return total, true
}

func computeLineRanges(pool *stringpool.Pool, afterSpans []span, byteRanges []ByteRange) ([]LineRange, bool) {
	result := make([]LineRange, 0, len(byteRanges))
	for _, r := range byteRanges {
		var found *span
		for i := range afterSpans {
			s := &afterSpans[i]
			if r.Start >= s.docOffset && r.Start <= s.docOffset+s.bytesLen {
				found = s
				break
			}
		}
		if found == nil {
			return nil, false
		}

		offsetIntoSpan := minInt(r.Start-found.docOffset, found.bytesLen)
		lfAtSpanStart := found.docLFOffset
		lfToRangeStart, ok := pool.LineFeedCount(found.location, found.offset, offsetIntoSpan)
		if !ok {
			return nil, false
		}
		startLine := lfAtSpanStart + lfToRangeStart

		lfInRange, ok := countLinesInRange(pool, afterSpans, r.Start, r.End)
		if !ok {
			return nil, false
		}

		var endLine int
		if r.Start == r.End {
			endLine = startLine + 1
		} else {
			endLine = startLine + lfInRange + 1
		}
		result = append(result, LineRange{startLine, endLine})
	}
	return result, true
}
