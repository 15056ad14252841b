package jit

import "github.com/xyproto/stackjit/internal/ir"

// deque is the abstract stack. Values are kept in buf[head:], bottom first;
// free room in front of head lets underflow loads be inserted at the bottom
// without moving the rest.
type deque struct {
	buf  []ir.Value
	head int
}

func (d *deque) len() int {
	return len(d.buf) - d.head
}

func (d *deque) reset() {
	d.buf = d.buf[:0]
	d.head = 0
}

func (d *deque) pushBack(v ir.Value) {
	d.buf = append(d.buf, v)
}

func (d *deque) pushFront(v ir.Value) {
	if d.head == 0 {
		room := d.len()
		if room < 4 {
			room = 4
		}
		grown := make([]ir.Value, room+d.len(), room+cap(d.buf))
		copy(grown[room:], d.buf)
		d.buf = grown
		d.head = room
	}
	d.head--
	d.buf[d.head] = v
}

func (d *deque) popBack() ir.Value {
	v := d.buf[len(d.buf)-1]
	d.buf = d.buf[:len(d.buf)-1]
	return v
}

// at returns the value at index i, 0 being the bottom
func (d *deque) at(i int) ir.Value {
	return d.buf[d.head+i]
}

func (d *deque) set(i int, v ir.Value) {
	d.buf[d.head+i] = v
}

// values returns the stack bottom first. The slice aliases the deque.
func (d *deque) values() []ir.Value {
	return d.buf[d.head:]
}
