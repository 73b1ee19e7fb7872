// cmd/builder-manager/workers.go
package main

import (
	"context"

	"application-builder/internal/builder/portfolio"
	"application-builder/internal/common/aws"
	"application-builder/internal/common/camunda"
	"application-builder/internal/common/config"
	"application-builder/internal/common/logger"
	"application-builder/pkg/registry"

	car "application-builder/internal/workers/application/create-application-record"
	rpi "application-builder/internal/workers/application/rank-portfolio-items"
	st "application-builder/internal/workers/application/select-template"
	sn "application-builder/internal/workers/application/send-notification"
	vad "application-builder/internal/workers/application/validate-application-data"
)

// registrations builds every worker compiled into this binary with its
// registry input schema.
func registrations(
	cfg *config.Config,
	conns *connections,
	ranker *portfolio.Ranker,
	records *car.Handler,
	reg *registry.ActivityRegistry,
	log logger.Logger,
) []camunda.Registration {
	timeout := func(taskType string) int { return config.GetWorkerConfig(cfg, taskType).Timeout }

	stCfg := st.LoadConfig()
	stCfg.Timeout = config.GetDuration(timeout(st.TaskType))

	rpiCfg := rpi.LoadConfig()
	rpiCfg.Timeout = config.GetDuration(timeout(rpi.TaskType))

	vadCfg := vad.LoadConfig()
	vadCfg.Timeout = config.GetDuration(timeout(vad.TaskType))

	snCfg := sn.LoadConfig()
	snCfg.Timeout = config.GetDuration(timeout(sn.TaskType))
	snCfg.RetryOnFailure = config.GetWorkerConfig(cfg, sn.TaskType).RetryOnFailure
	email, sms := notificationSenders(cfg, log)

	return []camunda.Registration{
		{
			TaskType:    st.TaskType,
			Handler:     st.NewHandler(stCfg, ranker, log).Handle,
			InputSchema: reg.InputSchema(st.TaskType),
		},
		{
			TaskType:    rpi.TaskType,
			Handler:     rpi.NewHandler(rpiCfg, ranker, log).Handle,
			InputSchema: reg.InputSchema(rpi.TaskType),
		},
		{
			TaskType:    vad.TaskType,
			Handler:     vad.NewHandler(vadCfg, log).Handle,
			InputSchema: reg.InputSchema(vad.TaskType),
		},
		{
			TaskType:    car.TaskType,
			Handler:     records.Handle,
			InputSchema: reg.InputSchema(car.TaskType),
		},
		{
			TaskType:    sn.TaskType,
			Handler:     sn.NewHandler(snCfg, conns.pg, email, sms, log).Handle,
			InputSchema: reg.InputSchema(sn.TaskType),
		},
	}
}

// notificationSenders returns nil senders for disabled channels so the
// notification worker reports them as disabled.
func notificationSenders(cfg *config.Config, log logger.Logger) (sn.EmailSender, sn.SMSSender) {
	awsCfg := cfg.Integrations.AWS
	if !awsCfg.SES.Enabled && !awsCfg.SNS.Enabled {
		return nil, nil
	}

	sdkCfg, err := aws.LoadConfig(context.Background(), awsCfg.Region)
	if err != nil {
		log.Warn("aws config unavailable, notifications disabled", map[string]interface{}{"error": err.Error()})
		return nil, nil
	}

	var email sn.EmailSender
	var sms sn.SMSSender
	if awsCfg.SES.Enabled {
		email = aws.NewEmailSender(aws.NewSES(sdkCfg), awsCfg.SES.FromEmail)
	}
	if awsCfg.SNS.Enabled {
		sms = aws.NewSMSSender(aws.NewSNS(sdkCfg), awsCfg.SNS.DefaultSMSSenderID)
	}
	return email, sms
}
