// Package cron emits the cron.hourly, cron.daily and cron.weekly hooks while
// the bot is connected. Each schedule can be overridden in the plugin's
// config section under the keys hourly, daily and weekly.
package cron

import (
	"context"
	"time"

	cronsched "github.com/csyork/csbot/pkg/cron"
	"github.com/csyork/csbot/pkg/hooks"
	"github.com/csyork/csbot/pkg/plugin"
)

const Name = "cron"

var schedules = []struct {
	key  string
	hook string
	expr string
}{
	{key: "hourly", hook: hooks.HookCronHourly, expr: "@hourly"},
	{key: "daily", hook: hooks.HookCronDaily, expr: "@daily"},
	{key: "weekly", hook: hooks.HookCronWeekly, expr: "@weekly"},
}

type Plugin struct {
	plugin.Base
	env       *plugin.Env
	scheduler *cronsched.Scheduler
}

func New(env *plugin.Env) (plugin.Plugin, error) {
	jobs := make([]cronsched.Job, 0, len(schedules))
	for _, s := range schedules {
		jobs = append(jobs, cronsched.Job{Name: s.hook, Expr: env.Config().GetOr(s.key, s.expr)})
	}

	p := &Plugin{env: env}
	sched, err := cronsched.NewScheduler(jobs, p.fire)
	if err != nil {
		return nil, err
	}
	p.scheduler = sched
	return p, nil
}

func (p *Plugin) Name() string {
	return Name
}

func (p *Plugin) Setup(ctx context.Context) error {
	p.scheduler.Start(context.WithoutCancel(ctx))
	return nil
}

func (p *Plugin) Teardown(context.Context) error {
	p.scheduler.Stop()
	return nil
}

func (p *Plugin) fire(hook string, at time.Time) {
	p.env.Emit(hook, &hooks.Cron{Name: hook, Time: at})
}
