package planner

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoDemand 计划窗口内没有排产船只
var ErrNoDemand = errors.New("no scheduled boats in planning window")

// MalformedBOMError MBOM行数据不完整，入口校验时拒绝
type MalformedBOMError struct {
	BoatID string
	Index  int
	Reason string
}

func (e *MalformedBOMError) Error() string {
	return fmt.Sprintf("malformed mbom on boat %s, line %d: %s", e.BoatID, e.Index, e.Reason)
}

// ShortageBlockError 排程存在缺料预测，拒绝提交
type ShortageBlockError struct {
	First Shortage
	Count int
}

func (e *ShortageBlockError) Error() string {
	return fmt.Sprintf("projected shortage of part %s on %s (stock %d), %d shortage event(s) total",
		e.First.PartID, FormatDate(e.First.Date), e.First.ResultingStock, e.Count)
}

// AllocationMismatchError 批次分配与净需求不一致，拒绝提交
type AllocationMismatchError struct {
	Mismatches []PartAllocation
}

func (e *AllocationMismatchError) Error() string {
	var b strings.Builder
	b.WriteString("batch allocation does not match net requirements:")
	for _, m := range e.Mismatches {
		fmt.Fprintf(&b, " part %s %+d;", m.PartID, m.Allocated-m.Required)
	}
	return strings.TrimSuffix(b.String(), ";")
}
