package job

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"edusync/backend/internal/repository"
	"edusync/backend/internal/scheduling"
	"edusync/backend/pkg/metrics"
)

// ── 冲突巡检任务 ──────────────────────────────────────────────
//
// 定期全量扫描排课表，报告所有互相冲突的记录对。
// 正常情况下写入路径已保证无冲突；巡检用于发现绕过服务层
// 直接写库（SQLite 无排他约束）或历史数据遗留的问题。只读，不修复。
// ─────────────────────────────────────────────────────────────

const auditTimeout = time.Minute

// Report 一次巡检结果
type Report struct {
	Checked   int
	Skipped   int // 时间格式无效而跳过的记录
	Conflicts []scheduling.ConflictPair
	Duration  time.Duration
}

// Auditor 冲突巡检器
type Auditor struct {
	repo   repository.ClassScheduleRepository
	logger *zap.Logger
	cron   *cron.Cron
}

// NewAuditor 创建巡检器
func NewAuditor(repo repository.ClassScheduleRepository, logger *zap.Logger) *Auditor {
	return &Auditor{repo: repo, logger: logger.Named("audit")}
}

// Run 执行一次全量巡检
func (a *Auditor) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	rows, err := a.repo.ListAll(ctx, repository.ScheduleFilter{})
	if err != nil {
		metrics.AuditRuns.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("读取排课失败: %w", err)
	}

	report := &Report{}
	entries := make([]scheduling.Entry, 0, len(rows))
	for i := range rows {
		e, err := rows[i].Entry()
		if err != nil {
			report.Skipped++
			a.logger.Warn("排课时间格式无效", zap.Uint("id", rows[i].ClassScheduleID), zap.Error(err))
			continue
		}
		entries = append(entries, e)
	}
	report.Checked = len(entries)
	report.Conflicts = scheduling.FindAllConflicts(entries)
	report.Duration = time.Since(start)

	metrics.AuditRuns.WithLabelValues("ok").Inc()
	metrics.AuditConflicts.Set(float64(len(report.Conflicts)))
	return report, nil
}

// Start 按 cron 表达式定时巡检；启动时立即执行一次
func (a *Auditor) Start(spec string) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(spec, a.runScheduled); err != nil {
		return fmt.Errorf("无效的巡检周期 %q: %w", spec, err)
	}
	a.cron = c
	a.cron.Start()
	go a.runScheduled()

	a.logger.Info("冲突巡检已启动", zap.String("spec", spec))
	return nil
}

// Stop 停止调度并等待正在执行的巡检结束
func (a *Auditor) Stop() {
	if a.cron == nil {
		return
	}
	<-a.cron.Stop().Done()
	a.logger.Info("冲突巡检已停止")
}

func (a *Auditor) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
	defer cancel()

	report, err := a.Run(ctx)
	if err != nil {
		a.logger.Error("冲突巡检失败", zap.Error(err))
		return
	}

	for _, p := range report.Conflicts {
		a.logger.Warn("发现排课冲突",
			zap.Uint("a", p.A.ID),
			zap.Uint("b", p.B.ID),
			zap.String("reason", p.Reason()),
			zap.String("day", p.A.Day.String()),
		)
	}
	a.logger.Info("冲突巡检完成",
		zap.Int("checked", report.Checked),
		zap.Int("skipped", report.Skipped),
		zap.Int("conflicts", len(report.Conflicts)),
		zap.Duration("duration", report.Duration),
	)
}
