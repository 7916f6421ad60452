package grid

// RecordID indexes a record in a store's arena. IDs start at 1.
type RecordID int

// Record is the occupancy entry shared by every cell of one placed object.
type Record struct {
	ID       RecordID
	Cells    []Cell
	ObjectID int
	Handle   Handle
}

// recordSet is a sparse set of records keyed by RecordID. Records live in a
// dense slice; sparse maps id-1 to a dense index or -1.
type recordSet struct {
	dense  []Record
	sparse []int
	nextID RecordID
}

func (s *recordSet) has(id RecordID) bool {
	if id <= 0 || int(id)-1 >= len(s.sparse) {
		return false
	}
	idx := s.sparse[id-1]
	return idx >= 0 && idx < len(s.dense) && s.dense[idx].ID == id
}

func (s *recordSet) get(id RecordID) (*Record, bool) {
	if !s.has(id) {
		return nil, false
	}
	return &s.dense[s.sparse[id-1]], true
}

func (s *recordSet) insert(r Record) RecordID {
	s.nextID++
	r.ID = s.nextID
	for int(r.ID)-1 >= len(s.sparse) {
		s.sparse = append(s.sparse, -1)
	}
	s.dense = append(s.dense, r)
	s.sparse[r.ID-1] = len(s.dense) - 1
	return r.ID
}

func (s *recordSet) remove(id RecordID) (Record, bool) {
	if !s.has(id) {
		return Record{}, false
	}
	idx := s.sparse[id-1]
	removed := s.dense[idx]
	last := len(s.dense) - 1
	moved := s.dense[last]

	s.dense[idx] = moved
	s.sparse[moved.ID-1] = idx

	s.dense[last] = Record{}
	s.dense = s.dense[:last]
	s.sparse[id-1] = -1
	return removed, true
}

func (s *recordSet) len() int {
	return len(s.dense)
}

func (s *recordSet) reset() {
	s.dense = nil
	s.sparse = nil
}
