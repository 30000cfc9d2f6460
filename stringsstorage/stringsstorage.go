/*
 Supplier and acceptor of preprocessed command strings
*/

package stringsstorage

// Line is one preprocessed command together with the source line it
// started on, kept for positioned error reports.
type Line struct {
	Text string
	Num  int
}

type StringsStorage interface {
	Supplier
	Consumer
}

type Supplier interface {
	Next() (Line, bool)
	Len() int
}

type Consumer interface {
	Accept(text string, lineNum int)
}

type Storage struct {
	index int
	lines []Line
}

func NewStorage() *Storage {
	retVal := new(Storage)
	retVal.lines = make([]Line, 0)
	return retVal
}

// Next returns the next stored line. The second value is false when the
// storage is exhausted.
func (storage *Storage) Next() (Line, bool) {
	if storage.index == len(storage.lines) {
		return Line{}, false
	}
	index := storage.index
	storage.index++
	return storage.lines[index], true
}

// empty strings are discarded
func (storage *Storage) Accept(text string, lineNum int) {
	if len(text) > 0 {
		storage.lines = append(storage.lines, Line{Text: text, Num: lineNum})
	}
}

func (storage *Storage) Len() int {
	return len(storage.lines)
}

func (storage *Storage) ResetPos() {
	storage.index = 0
}

func (storage *Storage) Empty() {
	storage.index = 0
	storage.lines = storage.lines[:0]
}

func (storage *Storage) PeekPos() int {
	return storage.index
}

func (storage *Storage) ToArray() []Line {
	retVal := make([]Line, len(storage.lines))
	copy(retVal, storage.lines)
	return retVal
}
