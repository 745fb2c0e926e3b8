// internal/common/aws/sns.go
package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSClient publishes SMS messages. A non-empty senderID is attached to
// every direct-to-phone publish.
type SNSClient struct {
	client   *sns.Client
	senderID string
}

func NewSNSClient(ctx context.Context, region, senderID string) (*SNSClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &SNSClient{client: sns.NewFromConfig(cfg), senderID: senderID}, nil
}

func (s *SNSClient) Publish(ctx context.Context, input *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	if s.senderID != "" && input.PhoneNumber != nil {
		input = withSenderID(input, s.senderID)
	}
	return s.client.Publish(ctx, input, optFns...)
}

func withSenderID(input *sns.PublishInput, senderID string) *sns.PublishInput {
	out := *input
	attrs := make(map[string]types.MessageAttributeValue, len(input.MessageAttributes)+1)
	for k, v := range input.MessageAttributes {
		attrs[k] = v
	}
	attrs["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{
		DataType:    aws.String("String"),
		StringValue: aws.String(senderID),
	}
	out.MessageAttributes = attrs
	return &out
}
