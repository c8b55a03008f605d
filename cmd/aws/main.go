package main

import (
	"context"
	"fmt"
	"os"
	"waterreminder/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

const (
	AlertSubject = "{{title}}"
	AlertHtml    = `<p>{{text}}</p>
<p><a href="{{acknowledge_url}}">{{action_label}}</a></p>`
	AlertText = `{{text}}

{{action_label}}: {{acknowledge_url}}`
	SampleAlertArgs = `{
	"title": "Time to drink water",
	"text": "It is 08:00, have a glass of water.",
	"time": "08:00",
	"action_label": "Drink Water",
	"acknowledge_url": "http://localhost:8080/alert/1/acknowledge"
}`
)

const usage = `usage: aws <command>

commands:
  create-alert-template   create the alert email template
  delete-alert-template   delete the alert email template
  send-alert-sample       send a sample alert email to AWS_EMAIL_RECIPIENT
`

func main() {
	if len(os.Args) != 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	exitOnError(err)
	svc := ses.NewFromConfig(loadAwsConfig(cfg))
	name := cfg.AwsEmailAlertTemplate

	switch os.Args[1] {
	case "create-alert-template":
		CreateEmailTemplate(svc, name, AlertSubject, AlertHtml, AlertText)
	case "delete-alert-template":
		DeleteEmailTemplate(svc, name)
	case "send-alert-sample":
		SendEmailTemplate(svc, cfg.AwsEmailSender, cfg.AwsEmailRecipient, name, SampleAlertArgs)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func loadAwsConfig(cfg *config.Config) aws.Config {
	awsCfg, err := awsConfig.LoadDefaultConfig(
		context.Background(),
		awsConfig.WithRegion(cfg.AwsRegion),
		awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.AwsAccessKey,
				cfg.AwsSecretKey,
				"",
			),
		),
	)
	exitOnError(err)
	return awsCfg
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func CreateEmailTemplate(
	svc *ses.Client,
	name string,
	subject string,
	htmlPart string,
	textPart string,
) {
	input := &ses.CreateTemplateInput{
		Template: &types.Template{
			SubjectPart:  &subject,
			HtmlPart:     &htmlPart,
			TextPart:     &textPart,
			TemplateName: &name,
		},
	}
	result, err := svc.CreateTemplate(context.Background(), input)
	exitOnError(err)

	fmt.Println("Success:")
	fmt.Println(result)
}

func DeleteEmailTemplate(svc *ses.Client, name string) {
	result, err := svc.DeleteTemplate(
		context.Background(),
		&ses.DeleteTemplateInput{
			TemplateName: &name,
		},
	)
	exitOnError(err)

	fmt.Println("Success:")
	fmt.Println(result)
}

func SendEmailTemplate(svc *ses.Client, sender string, to string, name string, args string) {
	result, err := svc.SendTemplatedEmail(
		context.Background(),
		&ses.SendTemplatedEmailInput{
			Source: aws.String(sender),
			Destination: &types.Destination{
				CcAddresses: []string{},
				ToAddresses: []string{to},
			},
			Template:     &name,
			TemplateData: &args,
		},
	)
	exitOnError(err)

	fmt.Println("Success:")
	fmt.Println(result)
}
