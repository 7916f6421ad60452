package grid

import (
	"errors"
	"fmt"
	"sort"
)

// ErrAlreadyOccupied is returned when a footprint overlaps an existing record.
var ErrAlreadyOccupied = errors.New("grid: cell already occupied")

// Store is the authoritative occupancy record for one layer. It is not safe
// for concurrent use.
type Store struct {
	name    string
	records recordSet
	cells   map[Cell]RecordID
}

// NewStore creates an empty store. name only shows up in errors.
func NewStore(name string) *Store {
	return &Store{
		name:  name,
		cells: make(map[Cell]RecordID),
	}
}

func (s *Store) Name() string {
	return s.name
}

// CanPlace reports whether every cell of the footprint is free.
func (s *Store) CanPlace(anchor Cell, size Size, dir Direction) bool {
	_, ok := s.firstOccupied(Footprint(anchor, size, dir))
	return !ok
}

// Place records an object over its footprint. On overlap nothing is written.
func (s *Store) Place(anchor Cell, size Size, dir Direction, objectID int, h Handle) (RecordID, error) {
	cells := Footprint(anchor, size, dir)
	if c, ok := s.firstOccupied(cells); ok {
		return 0, fmt.Errorf("%s: place object %d at %s: %w", s.name, objectID, c, ErrAlreadyOccupied)
	}
	id := s.records.insert(Record{Cells: cells, ObjectID: objectID, Handle: h})
	for _, c := range cells {
		s.cells[c] = id
	}
	return id, nil
}

// RemoveAt removes the whole record covering cell and returns its handle.
// An empty cell is a no-op and reports false.
func (s *Store) RemoveAt(cell Cell) (Handle, bool) {
	id, ok := s.cells[cell]
	if !ok {
		return 0, false
	}
	rec, ok := s.records.remove(id)
	if !ok {
		delete(s.cells, cell)
		return 0, false
	}
	for _, c := range rec.Cells {
		if s.cells[c] == id {
			delete(s.cells, c)
		}
	}
	return rec.Handle, true
}

func (s *Store) HasObjectAt(cell Cell) bool {
	_, ok := s.cells[cell]
	return ok
}

// HandleAt returns the representation handle of the record covering cell.
func (s *Store) HandleAt(cell Cell) (Handle, bool) {
	rec, ok := s.lookup(cell)
	if !ok {
		return 0, false
	}
	return rec.Handle, true
}

// RecordAt returns a copy of the record covering cell.
func (s *Store) RecordAt(cell Cell) (Record, bool) {
	rec, ok := s.lookup(cell)
	if !ok {
		return Record{}, false
	}
	out := *rec
	out.Cells = append([]Cell(nil), rec.Cells...)
	return out, true
}

// Len returns the number of placed records.
func (s *Store) Len() int {
	return s.records.len()
}

// Cells returns the number of occupied cells.
func (s *Store) Cells() int {
	return len(s.cells)
}

// Records returns copies of all records ordered by ID.
func (s *Store) Records() []Record {
	out := make([]Record, 0, s.records.len())
	for _, r := range s.records.dense {
		r.Cells = append([]Cell(nil), r.Cells...)
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Clear drops every record.
func (s *Store) Clear() {
	s.records.reset()
	s.cells = make(map[Cell]RecordID)
}

func (s *Store) lookup(cell Cell) (*Record, bool) {
	id, ok := s.cells[cell]
	if !ok {
		return nil, false
	}
	return s.records.get(id)
}

func (s *Store) firstOccupied(cells []Cell) (Cell, bool) {
	for _, c := range cells {
		if _, ok := s.cells[c]; ok {
			return c, true
		}
	}
	return Cell{}, false
}
