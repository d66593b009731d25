package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-otp-login/internal/domain"
)

// ttlGrace keeps expired records around long enough for a late verify to
// observe the expiry instead of a missing record. DynamoDB TTL deletion is
// lazy anyway, so this only bounds garbage.
const ttlGrace = 24 * time.Hour

// otpItem is the stored layout of a domain.OTPRecord.
// Timestamps are epoch milliseconds so conditions can compare them exactly.
type otpItem struct {
	Email       string `dynamodbav:"email"`
	OTPHash     string `dynamodbav:"otp_hash"`
	ExpiresAtMs int64  `dynamodbav:"expires_at"`
	CreatedAtMs int64  `dynamodbav:"created_at"`
	Verified    bool   `dynamodbav:"verified"`
	VerifiedAt  *int64 `dynamodbav:"verified_at"`
	Attempts    int    `dynamodbav:"attempts"`
	TTL         int64  `dynamodbav:"ttl"` // epoch seconds
}

func toOTPItem(r *domain.OTPRecord) otpItem {
	it := otpItem{
		Email:       r.Email,
		OTPHash:     r.OTPHash,
		ExpiresAtMs: toMillis(r.ExpiresAt),
		CreatedAtMs: toMillis(r.CreatedAt),
		Verified:    r.Verified,
		Attempts:    r.Attempts,
		TTL:         r.ExpiresAt.Add(ttlGrace).Unix(),
	}
	if r.VerifiedAt != nil {
		ms := toMillis(*r.VerifiedAt)
		it.VerifiedAt = &ms
	}
	return it
}

func (it otpItem) record() *domain.OTPRecord {
	r := &domain.OTPRecord{
		Email:     it.Email,
		OTPHash:   it.OTPHash,
		ExpiresAt: fromMillis(it.ExpiresAtMs),
		CreatedAt: fromMillis(it.CreatedAtMs),
		Verified:  it.Verified,
		Attempts:  it.Attempts,
	}
	if it.VerifiedAt != nil {
		t := fromMillis(*it.VerifiedAt)
		r.VerifiedAt = &t
	}
	return r
}

// OTPRepo stores one pending passcode per lower-cased email.
// PK: email. Every mutation after the initial put is conditioned on the
// created_at the caller read, so it can never touch a newer issuance.
type OTPRepo struct {
	client    API
	tableName string
}

func NewOTPRepo(client API, tableName string) *OTPRepo {
	return &OTPRepo{client: client, tableName: tableName}
}

func (r *OTPRepo) Get(ctx context.Context, email string) (*domain.OTPRecord, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldEmail, email),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("otp not found: %w", domain.ErrNotFound)
	}
	var it otpItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, fmt.Errorf("unmarshal otp: %w", err)
	}
	return it.record(), nil
}

// Put overwrites the record for rec.Email unless the stored record was
// created after issuedBefore (the cooldown cutoff). A lost race returns
// domain.ErrConflict.
func (r *OTPRepo) Put(ctx context.Context, rec *domain.OTPRecord, issuedBefore time.Time) error {
	item, err := attributevalue.MarshalMap(toOTPItem(rec))
	if err != nil {
		return fmt.Errorf("marshal otp: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(#k) OR #c <= :cutoff"),
		ExpressionAttributeNames: map[string]string{
			"#k": fieldEmail,
			"#c": fieldCreatedAt,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cutoff": numValue(toMillis(issuedBefore)),
		},
	})
	if err != nil {
		return conditionFailed(err, "put otp")
	}
	return nil
}

// MarkVerified flags the record as verified, provided it is still the same
// unverified record carrying otpHash.
func (r *OTPRepo) MarkVerified(ctx context.Context, email, otpHash string, createdAt, at time.Time) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldVerified:   true,
		fieldVerifiedAt: toMillis(at),
	})
	if err != nil {
		return err
	}
	ue.withCondition(
		map[string]string{"#c": fieldCreatedAt, "#h": fieldOTPHash, "#vf": fieldVerified},
		map[string]types.AttributeValue{
			":c":     numValue(toMillis(createdAt)),
			":h":     &types.AttributeValueMemberS{Value: otpHash},
			":false": &types.AttributeValueMemberBOOL{Value: false},
		},
	)
	return r.update(ctx, email, ue, "#c = :c AND #h = :h AND #vf = :false", "mark otp verified")
}

// ResetVerified undoes MarkVerified so the caller may retry verification.
func (r *OTPRepo) ResetVerified(ctx context.Context, email string, createdAt time.Time) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldVerified:   false,
		fieldVerifiedAt: nil,
	})
	if err != nil {
		return err
	}
	ue.withCondition(
		map[string]string{"#c": fieldCreatedAt},
		map[string]types.AttributeValue{":c": numValue(toMillis(createdAt))},
	)
	return r.update(ctx, email, ue, "#c = :c", "reset otp verified")
}

// IncrementAttempts atomically adds one mismatched attempt to the record.
func (r *OTPRepo) IncrementAttempts(ctx context.Context, email string, createdAt time.Time) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey(fieldEmail, email),
		UpdateExpression:    aws.String("ADD #a :one"),
		ConditionExpression: aws.String("#c = :c"),
		ExpressionAttributeNames: map[string]string{
			"#a": fieldAttempts,
			"#c": fieldCreatedAt,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": numValue(1),
			":c":   numValue(toMillis(createdAt)),
		},
	})
	if err != nil {
		return conditionFailed(err, "increment otp attempts")
	}
	return nil
}

// Delete removes the record if it is still the one created at createdAt.
func (r *OTPRepo) Delete(ctx context.Context, email string, createdAt time.Time) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey(fieldEmail, email),
		ConditionExpression: aws.String("#c = :c"),
		ExpressionAttributeNames: map[string]string{
			"#c": fieldCreatedAt,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c": numValue(toMillis(createdAt)),
		},
	})
	if err != nil {
		return conditionFailed(err, "delete otp")
	}
	return nil
}

func (r *OTPRepo) update(ctx context.Context, email string, ue *updateExpr, cond, what string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldEmail, email),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String(cond),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if err != nil {
		return conditionFailed(err, what)
	}
	return nil
}
