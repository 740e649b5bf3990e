package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/libopenstorage/vmssops"
	"github.com/libopenstorage/vmssops/metrics"
	"github.com/libopenstorage/vmssops/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

const (
	metricsJobName = "vmssops"
	exitFailure    = 1
)

func main() {
	app := cli.NewApp()
	app.Name = "vmssops"
	app.Usage = "Update the image and instances of Azure virtual machine scale sets"
	app.Before = setupLogging

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "log-level",
			Usage:  "Log level (debug, info, warn, error)",
			Value:  "info",
			EnvVar: "VMSSOPS_LOG_LEVEL",
		},
		cli.StringFlag{
			Name:   "credentials-file",
			Usage:  "YAML file mapping credential ids to service principals. If not set, AZURE_* env variables are used",
			EnvVar: "VMSSOPS_CREDENTIALS_FILE",
		},
		cli.StringSliceFlag{
			Name:  "env,e",
			Usage: "Variable used to expand ${name} placeholders, as KEY=VALUE. Overrides the process environment",
		},
		cli.StringFlag{
			Name:   "pushgateway",
			Usage:  "Prometheus Pushgateway URL metrics are pushed to after the command",
			EnvVar: "VMSSOPS_PUSHGATEWAY",
		},
	}

	jobFlags := []cli.Flag{
		cli.StringFlag{
			Name:  "job,j",
			Usage: "YAML job spec file",
		},
		cli.StringFlag{
			Name:   "credentials-id",
			Usage:  "Credential id in the credentials file, overrides the job spec",
			EnvVar: "VMSSOPS_CREDENTIALS_ID",
		},
		cli.StringFlag{
			Name:  "resource-group,g",
			Usage: "Resource group of the scale set, overrides the job spec",
		},
		cli.StringFlag{
			Name:  "name,n",
			Usage: "Name of the scale set, overrides the job spec",
		},
	}

	app.Commands = []cli.Command{
		{
			Name:  "update",
			Usage: "Update the image reference of a scale set",
			Flags: withJobFlags(jobFlags,
				cli.StringFlag{Name: "image-id", Usage: "Custom image id"},
				cli.StringFlag{Name: "publisher", Usage: "Marketplace image publisher"},
				cli.StringFlag{Name: "offer", Usage: "Marketplace image offer"},
				cli.StringFlag{Name: "sku", Usage: "Marketplace image sku"},
				cli.StringFlag{Name: "version", Usage: "Marketplace image version"},
			),
			Action: withMetrics(updateImage),
		},
		{
			Name:  "update-instances",
			Usage: "Upgrade scale set instances to the latest model",
			Flags: withJobFlags(jobFlags,
				cli.StringFlag{Name: "instance-ids,i", Usage: "Comma separated instance ids"},
			),
			Action: withMetrics(updateInstances),
		},
		{
			Name:   "is-custom-image",
			Usage:  "Print whether a scale set is deployed from a custom image",
			Flags:  jobFlags,
			Action: isCustomImage,
		},
		{
			Name:  "serve",
			Usage: "Serve scale set operations over HTTP",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:   "listen,l",
					Usage:  "Address to listen on",
					Value:  ":8090",
					EnvVar: "VMSSOPS_LISTEN",
				},
				cli.StringFlag{
					Name:   "credentials-id",
					Usage:  "Credential id in the credentials file",
					EnvVar: "VMSSOPS_CREDENTIALS_ID",
				},
			},
			Action: serve,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatalf("Error running vmssops: %v", err)
	}
}

func withJobFlags(jobFlags []cli.Flag, extra ...cli.Flag) []cli.Flag {
	flags := make([]cli.Flag, 0, len(jobFlags)+len(extra))
	flags = append(flags, jobFlags...)
	return append(flags, extra...)
}

func setupLogging(c *cli.Context) error {
	level, err := logrus.ParseLevel(c.GlobalString("log-level"))
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stdout)
	return nil
}

// commandFunc runs a command with the orchestrator options it should use.
type commandFunc func(ctx context.Context, c *cli.Context, opts ...vmssops.Option) error

// withMetrics registers a metrics observer for the command and pushes the
// collected metrics when a Pushgateway is configured.
func withMetrics(cmd commandFunc) cli.ActionFunc {
	return func(c *cli.Context) error {
		ctx, cancel := signalContext()
		defer cancel()

		registry := prometheus.NewRegistry()
		observer, err := metrics.NewObserver(registry)
		if err != nil {
			return cli.NewExitError(err.Error(), exitFailure)
		}

		cmdErr := cmd(ctx, c, vmssops.WithObserver(observer))

		if url := c.GlobalString("pushgateway"); url != "" {
			if err := metrics.Push(url, metricsJobName, registry); err != nil {
				logrus.Warnf("Failed to push metrics to %s: %v", url, err)
			}
		}
		return cmdErr
	}
}

func updateImage(ctx context.Context, c *cli.Context, opts ...vmssops.Option) error {
	job, err := loadJob(c)
	if err != nil {
		return exitError(err)
	}
	image, err := imageFromFlags(c)
	if err != nil {
		return exitError(err)
	}
	if image != nil {
		job.SetImageReference(*image)
	}
	if err := job.ValidateUpdate(); err != nil {
		return exitError(err)
	}

	client, env, err := setup(c, job.AzureCredentialsID)
	if err != nil {
		return exitError(err)
	}

	outcome, err := vmssops.NewOrchestrator(client, opts...).
		UpdateImage(ctx, job.ResourceGroup, job.Name, *job.ImageReference, env)
	return outcomeError(outcome, err)
}

func updateInstances(ctx context.Context, c *cli.Context, opts ...vmssops.Option) error {
	job, err := loadJob(c)
	if err != nil {
		return exitError(err)
	}
	if ids := c.String("instance-ids"); ids != "" {
		job.InstanceIDs = ids
	}
	if err := job.ValidateUpdateInstances(); err != nil {
		return exitError(err)
	}

	client, env, err := setup(c, job.AzureCredentialsID)
	if err != nil {
		return exitError(err)
	}

	outcome, err := vmssops.NewOrchestrator(client, opts...).
		UpdateInstances(ctx, job.ResourceGroup, job.Name, job.InstanceIDs, env)
	return outcomeError(outcome, err)
}

func isCustomImage(c *cli.Context) error {
	ctx, cancel := signalContext()
	defer cancel()

	job, err := loadJob(c)
	if err != nil {
		return exitError(err)
	}
	if err := job.Validate(); err != nil {
		return exitError(err)
	}

	client, _, err := setup(c, job.AzureCredentialsID)
	if err != nil {
		return exitError(err)
	}

	isCustom, err := vmssops.IsCustomImage(ctx, client, job.ResourceGroup, job.Name)
	if err != nil {
		return exitError(err)
	}
	fmt.Println(isCustom)
	return nil
}

func serve(c *cli.Context) error {
	ctx, cancel := signalContext()
	defer cancel()

	client, env, err := setup(c, c.String("credentials-id"))
	if err != nil {
		return exitError(err)
	}

	registry := prometheus.NewRegistry()
	observer, err := metrics.NewObserver(registry)
	if err != nil {
		return exitError(err)
	}

	orchestrator := vmssops.NewOrchestrator(client, vmssops.WithObserver(observer))
	s := server.New(client, orchestrator, env, registry)
	if err := s.ListenAndServe(ctx, c.String("listen")); err != nil {
		return exitError(err)
	}
	return nil
}

func outcomeError(outcome vmssops.Outcome, err error) error {
	if err != nil {
		return exitError(err)
	}
	if !outcome.Succeeded() {
		return cli.NewExitError(fmt.Sprintf("%s: %s", outcome.Status, outcome.Message), exitFailure)
	}
	return nil
}

func exitError(err error) error {
	return cli.NewExitError(err.Error(), exitFailure)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
