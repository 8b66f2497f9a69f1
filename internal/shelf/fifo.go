package shelf

const nilSlot = -1

// fifo keeps one insertion-ordered list of slot indices per temperature.
// Links live in arrays indexed by slot, so a slot is in at most one list and
// unlinking is O(1) without any per-node allocation.
type fifo struct {
	prev   []int
	next   []int
	linked []bool
	head   [3]int
	tail   [3]int
	size   [3]int
}

func newFIFO(capacity int) fifo {
	f := fifo{
		prev:   make([]int, capacity),
		next:   make([]int, capacity),
		linked: make([]bool, capacity),
	}
	for i := range f.head {
		f.head[i] = nilSlot
		f.tail[i] = nilSlot
	}
	for pos := 0; pos < capacity; pos++ {
		f.prev[pos] = nilSlot
		f.next[pos] = nilSlot
	}
	return f
}

func (f *fifo) pushBack(list, pos int) {
	f.prev[pos] = f.tail[list]
	f.next[pos] = nilSlot
	if f.tail[list] == nilSlot {
		f.head[list] = pos
	} else {
		f.next[f.tail[list]] = pos
	}
	f.tail[list] = pos
	f.linked[pos] = true
	f.size[list]++
}

func (f *fifo) front(list int) int {
	return f.head[list]
}

func (f *fifo) empty(list int) bool {
	return f.head[list] == nilSlot
}

func (f *fifo) unlink(list, pos int) {
	if !f.linked[pos] {
		return
	}

	if p := f.prev[pos]; p == nilSlot {
		f.head[list] = f.next[pos]
	} else {
		f.next[p] = f.next[pos]
	}
	if n := f.next[pos]; n == nilSlot {
		f.tail[list] = f.prev[pos]
	} else {
		f.prev[n] = f.prev[pos]
	}

	f.prev[pos] = nilSlot
	f.next[pos] = nilSlot
	f.linked[pos] = false
	f.size[list]--
}

// walk returns the slots of a list from oldest to newest
func (f *fifo) walk(list int) []int {
	var out []int
	for pos := f.head[list]; pos != nilSlot; pos = f.next[pos] {
		out = append(out, pos)
		if len(out) > len(f.next) {
			// cycle; validate reports it
			break
		}
	}
	return out
}
