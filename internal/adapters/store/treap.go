package store

import "math/rand"

// Treap-backed ranked index for the in-memory store.
//
// Ordering: average DESC, then userID ASC, so in-order traversal yields the
// leaderboard best to worst. Priorities are random, giving O(log N) expected
// upsert and delete. Not safe for concurrent use; MemoryStore serializes
// access behind its mutex.

type treapNode struct {
	id    string
	score float64
	prio  uint64
	left  *treapNode
	right *treapNode
}

type rankedIndex struct {
	root *treapNode
	size int
	rng  *rand.Rand
}

func newRankedIndex(seed int64) *rankedIndex {
	return &rankedIndex{rng: rand.New(rand.NewSource(seed))} //nolint:gosec // ordering balance only, not security
}

// ranksBefore reports whether (aScore, aID) appears before (bScore, bID).
func ranksBefore(aScore float64, aID string, bScore float64, bID string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aID < bID
}

func rotateRight(y *treapNode) *treapNode {
	x := y.left
	y.left = x.right
	x.right = y
	return x
}

func rotateLeft(x *treapNode) *treapNode {
	y := x.right
	x.right = y.left
	y.left = x
	return y
}

func (t *rankedIndex) insert(n *treapNode, id string, score float64) *treapNode {
	if n == nil {
		return &treapNode{id: id, score: score, prio: t.rng.Uint64()}
	}
	if ranksBefore(score, id, n.score, n.id) {
		n.left = t.insert(n.left, id, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = t.insert(n.right, id, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	return n
}

func (t *rankedIndex) remove(n *treapNode, id string, score float64) *treapNode {
	if n == nil {
		return nil
	}
	if score == n.score && id == n.id {
		switch {
		case n.left == nil:
			return n.right
		case n.right == nil:
			return n.left
		case n.left.prio > n.right.prio:
			n = rotateRight(n)
			n.right = t.remove(n.right, id, score)
		default:
			n = rotateLeft(n)
			n.left = t.remove(n.left, id, score)
		}
	} else if ranksBefore(score, id, n.score, n.id) {
		n.left = t.remove(n.left, id, score)
	} else {
		n.right = t.remove(n.right, id, score)
	}
	return n
}

// upsert inserts id with score, removing any previous entry first. oldScore
// is only consulted when had is true.
func (t *rankedIndex) upsert(id string, score float64, oldScore float64, had bool) {
	if had {
		t.root = t.remove(t.root, id, oldScore)
		t.size--
	}
	t.root = t.insert(t.root, id, score)
	t.size++
}

// entries returns all members in rank order (highest average first).
func (t *rankedIndex) entries() []Entry {
	out := make([]Entry, 0, t.size)
	collect(t.root, &out)
	return out
}

func collect(n *treapNode, out *[]Entry) {
	if n == nil {
		return
	}
	collect(n.left, out)
	*out = append(*out, Entry{UserID: n.id, Average: n.score})
	collect(n.right, out)
}

func (t *rankedIndex) clear() {
	t.root = nil
	t.size = 0
}
