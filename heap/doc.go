// Package heap provides the managed heap owned by a control structure.
//
// Heap values form a closed sum type. Immediates (the empty list and
// fixnums) live directly in a Value; pairs and strings live in an arena and
// are reached through a Ref, which carries the object's tag:
//
//	h := heap.New(heap.Config{})
//	defer h.Close()
//
//	s, _ := h.AllocString("hello")
//	list, _ := h.AllocPair(s, heap.Empty)
//
//	strs, _ := h.Strings(list) // ["hello"]
//
// # Layout accounting
//
// Objects are not stored as raw memory, but every allocation is charged the
// size the object would occupy in a word-addressed heap: a string costs
// Align(WordSize + n + 1) bytes (length word, bytes, terminator) and a pair
// costs two words. Sizes are always multiples of ObjectAlignment. The
// optional Config.Limit caps the total charged bytes.
//
// # Reclamation
//
// The heap never frees individual objects. Close releases the whole arena;
// any Ref obtained before Close is invalid afterwards.
package heap
