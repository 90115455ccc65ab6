package planner

// ExtractDemand 从排产船只的MBOM展开需求事件。
// need_by_date = due_date - manufacturing_time_days（自然日，可能在过去，
// 表示需求已经迟了）。每条(船, MBOM行)产生一个事件，不做净额和供应商逻辑。
// 状态或日期窗口过滤掉的船只不产生事件，窗口内没有可用船只时返回ErrNoDemand。
func ExtractDemand(boats []ProductionBoat, window DateWindow) ([]DemandEvent, error) {
	var events []DemandEvent
	eligible := 0

	for _, boat := range boats {
		if boat.Status != BoatScheduled && boat.Status != BoatInProgress {
			continue
		}
		if !window.Contains(boat.DueDate) {
			continue
		}
		eligible++

		needBy := AddDays(boat.DueDate, -boat.ManufacturingTimeDays)
		for i, line := range boat.MBOM {
			if line.PartID == "" {
				return nil, &MalformedBOMError{BoatID: boat.ID, Index: i, Reason: "empty part_id"}
			}
			if line.QuantityRequired <= 0 {
				return nil, &MalformedBOMError{BoatID: boat.ID, Index: i,
					Reason: "quantity_required must be positive"}
			}
			events = append(events, DemandEvent{
				PartID:     line.PartID,
				PartName:   line.PartName,
				Quantity:   line.QuantityRequired,
				NeedByDate: needBy,
				BoatID:     boat.ID,
				BoatName:   boat.Name,
				DueDate:    CivilDate(boat.DueDate),
			})
		}
	}

	if eligible == 0 {
		return nil, ErrNoDemand
	}
	return events, nil
}
