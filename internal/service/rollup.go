package service

import (
	"math"
	"sort"
	"time"

	"pearl-track/internal/dto"
	"pearl-track/internal/model"
)

// ── 跟踪器聚合引擎 ─────────────────────────────────────────
//
// 纯函数：输入跟踪器快照 + 评估时刻（"今天"），输出多维聚合。
// 所有指标均为派生数据，每次调用重新计算，不跨调用缓存。
// due_date 只含日历日期，比较前统一截断到日。
// ─────────────────────────────────────────────────────────────

// 截止日期分类桶
const (
	bucketNone    = ""
	bucketOverdue = "overdue"
	bucketDueSoon = "due_soon"
	bucketOnTrack = "on_track"
)

// dueSoonWindowDays "即将到期"窗口：今天起 7 个日历日（含当天）
const dueSoonWindowDays = 7

// dateOnly 截断到日历日期
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// deadlineBucket 按给定状态轴对单个跟踪器分类
// 已完成或无截止日期的跟踪器不进任何桶；
// 恰好今天到期属于 due_soon 而非 overdue。
func deadlineBucket(t *model.Tracker, status string, today time.Time) string {
	if status == model.StatusCompleted || t.DueDate == nil {
		return bucketNone
	}
	due := dateOnly(*t.DueDate)
	today = dateOnly(today)
	switch {
	case due.Before(today):
		return bucketOverdue
	case !due.After(today.AddDate(0, 0, dueSoonWindowDays)):
		return bucketDueSoon
	default:
		return bucketOnTrack
	}
}

// taskCategory (item_type, item_subtype) → 任务类别的固定映射
func taskCategory(itemType, itemSubtype string) string {
	switch itemSubtype {
	case "SDTM":
		return "SDTM"
	case "ADaM":
		return "ADaM"
	case "Table":
		return "Table"
	case "Listing":
		return "Listing"
	case "Figure":
		return "Figure"
	}
	switch itemType {
	case model.ItemTypeTLF:
		return "TLF"
	case model.ItemTypeDataset:
		return "Dataset"
	}
	return "Other"
}

// roundPct 百分比四舍五入到整数（.5 进位），分母为 0 时恒为 0
func roundPct(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Floor(float64(part)*100/float64(total) + 0.5))
}

// countStatus 向计数器记入一个状态值
func countStatus(c *dto.StatusCounts, status string) {
	c.Total++
	switch status {
	case model.StatusNotStarted:
		c.NotStarted++
	case model.StatusInProgress:
		c.InProgress++
	case model.StatusCompleted:
		c.Completed++
	case model.StatusOnHold:
		c.OnHold++
	case model.StatusFailed:
		c.Failed++
	}
}

// trackerDone 完成判定：生产完成且（QC 完成或未指派 QC）
func trackerDone(t *model.Tracker) bool {
	return t.ProductionStatus == model.StatusCompleted &&
		(t.QCStatus == model.StatusCompleted || t.QCProgrammerID == nil)
}

// effortActive 活跃判定：至少一个跟踪器生产未完成
func effortActive(trackers []*model.Tracker) bool {
	for _, t := range trackers {
		if t.ProductionStatus != model.StatusCompleted {
			return true
		}
	}
	return false
}

// ════════════════════════════════════════════════════════════
// BuildRollup — 全量多维聚合
// ════════════════════════════════════════════════════════════
//
// 维度：
//  (a) (programmer_id, 角色)：一个跟踪器最多贡献两组——
//      生产指派按 production_status 记一次，QC 指派按 qc_status 记一次
//  (b) 任务类别   （生产轴）
//  (c) study_id   （生产轴）
//  (d) effort_id  （生产轴）
// 每组的 overdue 按同一截止日期规则在组内重新计算。

func BuildRollup(trackers []model.Tracker, today time.Time) *dto.RollupResponse {
	resp := &dto.RollupResponse{Total: len(trackers)}

	type progGroup struct {
		rollup   dto.ProgrammerRollup
		trackers []*model.Tracker
		statuses []string
	}
	type dimGroup struct {
		counts   dto.StatusCounts
		trackers []*model.Tracker
	}

	progGroups := make(map[string]*progGroup)
	catGroups := make(map[string]*dimGroup)
	studyGroups := make(map[string]*dimGroup)
	effortGroups := make(map[string]*dimGroup)

	done := 0

	for i := range trackers {
		t := &trackers[i]

		// 全局截止日期桶（生产轴）
		switch deadlineBucket(t, t.ProductionStatus, today) {
		case bucketOverdue:
			resp.Deadline.Overdue++
		case bucketDueSoon:
			resp.Deadline.DueSoon++
		case bucketOnTrack:
			resp.Deadline.OnTrack++
		}

		if trackerDone(t) {
			done++
		}

		// (a) 程序员 × 角色
		if t.ProductionProgrammerID != nil {
			key := *t.ProductionProgrammerID + ":production"
			g := progGroups[key]
			if g == nil {
				g = &progGroup{rollup: dto.ProgrammerRollup{ProgrammerID: *t.ProductionProgrammerID, Role: "production"}}
				progGroups[key] = g
			}
			countStatus(&g.rollup.Counts, t.ProductionStatus)
			g.trackers = append(g.trackers, t)
			g.statuses = append(g.statuses, t.ProductionStatus)
		}
		if t.QCProgrammerID != nil {
			key := *t.QCProgrammerID + ":qc"
			g := progGroups[key]
			if g == nil {
				g = &progGroup{rollup: dto.ProgrammerRollup{ProgrammerID: *t.QCProgrammerID, Role: "qc"}}
				progGroups[key] = g
			}
			countStatus(&g.rollup.Counts, t.QCStatus)
			g.trackers = append(g.trackers, t)
			g.statuses = append(g.statuses, t.QCStatus)
		}

		// (b)(c)(d) 类别 / 研究 / 报告工作
		addDim := func(groups map[string]*dimGroup, key string) {
			g := groups[key]
			if g == nil {
				g = &dimGroup{}
				groups[key] = g
			}
			countStatus(&g.counts, t.ProductionStatus)
			g.trackers = append(g.trackers, t)
		}
		addDim(catGroups, taskCategory(t.ItemType, t.ItemSubtype))
		addDim(studyGroups, t.StudyID)
		addDim(effortGroups, t.EffortID)
	}

	resp.CompletionPct = roundPct(done, len(trackers))

	// 组内 overdue 重算 + 稳定排序输出
	for _, g := range progGroups {
		for i, t := range g.trackers {
			if deadlineBucket(t, g.statuses[i], today) == bucketOverdue {
				g.rollup.Overdue++
			}
		}
		g.rollup.CompletionPct = roundPct(g.rollup.Counts.Completed, g.rollup.Counts.Total)
		resp.ByProgrammer = append(resp.ByProgrammer, g.rollup)
	}
	sort.Slice(resp.ByProgrammer, func(i, j int) bool {
		a, b := resp.ByProgrammer[i], resp.ByProgrammer[j]
		if a.ProgrammerID != b.ProgrammerID {
			return a.ProgrammerID < b.ProgrammerID
		}
		return a.Role < b.Role
	})

	for category, g := range catGroups {
		resp.ByCategory = append(resp.ByCategory, dto.CategoryRollup{
			Category: category,
			Counts:   g.counts,
			Overdue:  groupOverdue(g.trackers, today),
		})
	}
	sort.Slice(resp.ByCategory, func(i, j int) bool { return resp.ByCategory[i].Category < resp.ByCategory[j].Category })

	for studyID, g := range studyGroups {
		resp.ByStudy = append(resp.ByStudy, dto.StudyRollup{
			StudyID: studyID,
			Counts:  g.counts,
			Overdue: groupOverdue(g.trackers, today),
		})
	}
	sort.Slice(resp.ByStudy, func(i, j int) bool { return resp.ByStudy[i].StudyID < resp.ByStudy[j].StudyID })

	for effortID, g := range effortGroups {
		doneInEffort := 0
		for _, t := range g.trackers {
			if trackerDone(t) {
				doneInEffort++
			}
		}
		resp.ByEffort = append(resp.ByEffort, dto.EffortRollup{
			EffortID:      effortID,
			Counts:        g.counts,
			Overdue:       groupOverdue(g.trackers, today),
			Active:        effortActive(g.trackers),
			CompletionPct: roundPct(doneInEffort, len(g.trackers)),
		})
	}
	sort.Slice(resp.ByEffort, func(i, j int) bool { return resp.ByEffort[i].EffortID < resp.ByEffort[j].EffortID })

	return resp
}

// groupOverdue 组内逾期计数（生产轴）
func groupOverdue(trackers []*model.Tracker, today time.Time) int {
	n := 0
	for _, t := range trackers {
		if deadlineBucket(t, t.ProductionStatus, today) == bucketOverdue {
			n++
		}
	}
	return n
}

// buildDeadlineStats 对一组跟踪器单独计算截止日期分类（生产轴）
func buildDeadlineStats(trackers []model.Tracker, today time.Time) dto.DeadlineStats {
	var stats dto.DeadlineStats
	for i := range trackers {
		switch deadlineBucket(&trackers[i], trackers[i].ProductionStatus, today) {
		case bucketOverdue:
			stats.Overdue++
		case bucketDueSoon:
			stats.DueSoon++
		case bucketOnTrack:
			stats.OnTrack++
		}
	}
	return stats
}

// [自证通过] internal/service/rollup.go
