package ppg

// LineReassembler 把任意切分的字节流重组为以 '\n' 结尾的完整记录
// 状态在多次 Feed 之间保持，终止符跨块到达也能正确切分
//
// 缓冲区有上限：在见到终止符之前攒满 BufferSize 时，
// 丢弃整段待组数据 (包括触发溢出的那个字节) 并从下一个字节重新同步，
// 不会为被丢弃的片段产出记录
type LineReassembler struct {
	pending  []byte
	capacity int

	// 溢出统计与诊断回调
	overflowCount int
	OnOverflow    func(discarded int) // discarded 为被丢弃的字节数 (不含触发字节)
}

// NewLineReassembler 创建行重组器
// capacity: 单条记录的最大字节数 (含终止符前的所有字节)
func NewLineReassembler(capacity int) *LineReassembler {
	return &LineReassembler{
		pending:  make([]byte, 0, capacity),
		capacity: capacity,
	}
}

// Feed 送入一块新到达的字节 (长度可以为 0)，返回本次完成的所有记录
// 返回的每条记录都是独立拷贝，不含 '\n'；行尾的 '\r' 保留，由解析层剥离
func (r *LineReassembler) Feed(chunk []byte) [][]byte {
	var records [][]byte

	for _, b := range chunk {
		if b == '\n' {
			// 一条记录完成，缓冲区内容即记录本体
			record := make([]byte, len(r.pending))
			copy(record, r.pending)
			records = append(records, record)
			r.pending = r.pending[:0]
			continue
		}

		// 追加后必须仍小于容量，否则触发溢出策略
		if len(r.pending) < r.capacity-1 {
			r.pending = append(r.pending, b)
		} else {
			r.overflowCount++
			if r.OnOverflow != nil {
				r.OnOverflow(len(r.pending))
			}
			r.pending = r.pending[:0]
		}
	}

	return records
}

// PendingBytes 返回当前待组的字节数 (用于测试和统计)
func (r *LineReassembler) PendingBytes() int {
	return len(r.pending)
}

// OverflowCount 返回累计溢出次数
func (r *LineReassembler) OverflowCount() int {
	return r.overflowCount
}

// Reset 清空缓冲区 (关闭时残留的半条记录直接丢弃)
func (r *LineReassembler) Reset() {
	r.pending = r.pending[:0]
}
