package ckb

// ShannonsPerCKB is the capacity unit conversion, one byte of cell storage
// costs one CKB.
const (
	ShannonsPerCKB = 100_000_000
	Decimals       = 8
)

func (s Script) occupiedBytes() uint64 {
	return 32 + 1 + uint64(len(s.Args))
}

// OccupiedCapacity is the minimum capacity, in shannons, a cell with this
// output and dataLen bytes of data must hold.
func (o CellOutput) OccupiedCapacity(dataLen int) uint64 {
	size := 8 + o.Lock.occupiedBytes() + uint64(dataLen)
	if o.Type != nil {
		size += o.Type.occupiedBytes()
	}
	return size * ShannonsPerCKB
}
