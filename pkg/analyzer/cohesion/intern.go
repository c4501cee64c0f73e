package cohesion

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
)

// interner maps identifier names to dense uint32 ids so usage sets can be
// held in roaring bitmaps and compared with cheap And/Or cardinality.
type interner struct {
	ids   map[string]uint32
	names []string
}

func newInterner() *interner {
	return &interner{ids: make(map[string]uint32)}
}

// id returns the id for name, assigning the next dense id on first use.
func (in *interner) id(name string) uint32 {
	if id, ok := in.ids[name]; ok {
		return id
	}
	id := uint32(len(in.names))
	in.ids[name] = id
	in.names = append(in.names, name)
	return id
}

// lookup returns the id for name without assigning one.
func (in *interner) lookup(name string) (uint32, bool) {
	id, ok := in.ids[name]
	return id, ok
}

// namesOf resolves a bitmap of ids back to sorted identifier names.
func (in *interner) namesOf(b *roaring.Bitmap) []string {
	if b == nil || b.IsEmpty() {
		return nil
	}
	out := make([]string, 0, b.GetCardinality())
	it := b.Iterator()
	for it.HasNext() {
		id := it.Next()
		if int(id) < len(in.names) {
			out = append(out, in.names[id])
		}
	}
	sort.Strings(out)
	return out
}
