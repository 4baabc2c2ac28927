package reservation

// Projection 某本书在某个日期的可借数量推算
//
//	Remaining = AvailableCount
//	          + 截止日期不晚于该日的未归还借出(届时应已归还)
//	          - 该日及之后的其他待处理预约(各自占用一本)
//
// 一个日期为D的预约从今天起到D为止占用一本副本
type Projection struct {
	AvailableCount int
	ReturningBy    int64
	ReservedFrom   int64
}

// Remaining 推算剩余副本数(可为负)
func (p Projection) Remaining() int64 {
	return int64(p.AvailableCount) + p.ReturningBy - p.ReservedFrom
}

// Available 该日是否还能再预约一本
func (p Projection) Available() bool {
	return p.Remaining() > 0
}

// Check 不可预约时返回ErrNotAvailableForDate
func (p Projection) Check() error {
	if !p.Available() {
		return ErrNotAvailableForDate
	}
	return nil
}

// BlocksLending 借出窗口内其他用户的待处理预约是否已占满当前可借副本
// held: 预约日期落在[今天, 今天+借期) 内的其他用户待处理预约数
func BlocksLending(held int64, available int) bool {
	return held > 0 && held >= int64(available)
}
