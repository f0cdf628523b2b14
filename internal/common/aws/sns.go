// internal/common/aws/sns.go
package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"broker-match-workers/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

const MatchesReadyEvent = "broker.matches.ready"

type SNSClient struct {
	client *sns.Client
}

func NewSNSClient(ctx context.Context, region string) (*SNSClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &SNSClient{client: sns.NewFromConfig(cfg)}, nil
}

func (s *SNSClient) Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	return s.client.Publish(ctx, input)
}

// Publisher is the part of SNSClient the match notifier needs.
type Publisher interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

// MatchesReady is the event body announced when a user's ranking is stored.
type MatchesReady struct {
	EventType   string    `json:"eventType"`
	UserID      string    `json:"userId"`
	MatchCount  int       `json:"matchCount"`
	BrokerIDs   []string  `json:"brokerIds"`
	TopBrokerID string    `json:"topBrokerId,omitempty"`
	TopScore    float64   `json:"topScore,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// MatchPublisher announces ranked brokers on an SNS topic.
type MatchPublisher struct {
	client   Publisher
	topicARN string
	now      func() time.Time
}

func NewMatchPublisher(client Publisher, topicARN string) *MatchPublisher {
	return &MatchPublisher{
		client:   client,
		topicARN: topicARN,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// PublishMatches returns the SNS message id.
func (p *MatchPublisher) PublishMatches(ctx context.Context, userID string, matches []models.MatchResult) (string, error) {
	event := MatchesReady{
		EventType:  MatchesReadyEvent,
		UserID:     userID,
		MatchCount: len(matches),
		BrokerIDs:  make([]string, 0, len(matches)),
		OccurredAt: p.now(),
	}
	for _, m := range matches {
		event.BrokerIDs = append(event.BrokerIDs, m.BrokerID)
	}
	if len(matches) > 0 {
		event.TopBrokerID = matches[0].BrokerID
		event.TopScore = matches[0].Score
	}

	body, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("encode %s event: %w", MatchesReadyEvent, err)
	}

	out, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		Subject:  aws.String("Broker matches ready"),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"eventType": {DataType: aws.String("String"), StringValue: aws.String(MatchesReadyEvent)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("publish %s for %s: %w", MatchesReadyEvent, userID, err)
	}
	return aws.ToString(out.MessageId), nil
}
