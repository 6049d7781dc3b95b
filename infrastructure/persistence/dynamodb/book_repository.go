package dynamodb

import (
	"context"
	"errors"
	"time"

	"books-backend/application/ports"
	"books-backend/domain/book"
	pkgerrors "books-backend/pkg/errors"
	"books-backend/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// DBClient is the subset of the DynamoDB API used by the repository
type DBClient interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Compile-time checks
var (
	_ DBClient             = (*dynamodb.Client)(nil)
	_ ports.BookRepository = (*BookRepository)(nil)
)

// bookItem is the stored shape of a book
type bookItem struct {
	ID          string `dynamodbav:"id"`
	Author      string `dynamodbav:"author"`
	Name        string `dynamodbav:"name"`
	ReleaseDate string `dynamodbav:"releaseDate,omitempty"`
}

func toItem(b book.Book) bookItem {
	return bookItem{
		ID:          b.ID,
		Author:      b.Author,
		Name:        b.Name,
		ReleaseDate: b.ReleaseDate.String(),
	}
}

// toBook converts a stored item. A release date that does not parse is
// logged and left unset so one bad row cannot fail a listing.
func (r *BookRepository) toBook(i bookItem) book.Book {
	date, err := book.ParseDate(i.ReleaseDate)
	if err != nil {
		r.logger.Warn("Ignoring unparseable release date",
			zap.String("bookID", i.ID),
			zap.String("releaseDate", i.ReleaseDate),
			zap.Error(err),
		)
	}
	return book.Book{
		ID:          i.ID,
		Author:      i.Author,
		Name:        i.Name,
		ReleaseDate: date,
	}
}

// BookRepository stores books in a single table keyed by id with an author index
type BookRepository struct {
	client    DBClient
	tableName string
	indexName string
	metrics   *observability.Collector
	logger    *zap.Logger
}

// NewBookRepository creates a new DynamoDB book repository
func NewBookRepository(client DBClient, tableName, indexName string, metrics *observability.Collector, logger *zap.Logger) *BookRepository {
	return &BookRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		metrics:   metrics,
		logger:    logger,
	}
}

func (r *BookRepository) key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

// Get retrieves a book by its ID
func (r *BookRepository) Get(ctx context.Context, id string) (book.Book, error) {
	start := time.Now()
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       r.key(id),
	})
	r.metrics.RecordDB("GetItem", r.tableName, err, time.Since(start))
	if err != nil {
		return book.Book{}, r.storeError("GetItem", err, zap.String("bookID", id))
	}
	if out.Item == nil {
		return book.Book{}, ports.BookNotFound(id)
	}

	var item bookItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return book.Book{}, r.storeError("GetItem", err, zap.String("bookID", id))
	}
	return r.toBook(item), nil
}

// List scans the whole table
func (r *BookRepository) List(ctx context.Context) ([]book.Book, error) {
	start := time.Now()
	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})

	books := []book.Book{}
	pages := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			r.metrics.RecordDB("Scan", r.tableName, err, time.Since(start))
			return nil, r.storeError("Scan", err, zap.Int("pages", pages))
		}
		pages++
		if books, err = r.appendItems(books, page.Items); err != nil {
			return nil, r.storeError("Scan", err)
		}
	}
	r.metrics.RecordDB("Scan", r.tableName, nil, time.Since(start))

	r.logger.Debug("Scanned books", zap.Int("count", len(books)), zap.Int("pages", pages))
	return books, nil
}

// ListByAuthor queries the author index
func (r *BookRepository) ListByAuthor(ctx context.Context, author string) ([]book.Book, error) {
	keyCond := expression.Key("author").Equal(expression.Value(author))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build author query").WithCause(err)
	}

	start := time.Now()
	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.indexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	books := []book.Book{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			r.metrics.RecordDB("Query", r.tableName, err, time.Since(start))
			return nil, r.storeError("Query", err, zap.String("author", author))
		}
		if books, err = r.appendItems(books, page.Items); err != nil {
			return nil, r.storeError("Query", err, zap.String("author", author))
		}
	}
	r.metrics.RecordDB("Query", r.tableName, nil, time.Since(start))

	return books, nil
}

// Put writes the whole item
func (r *BookRepository) Put(ctx context.Context, b book.Book) error {
	item, err := attributevalue.MarshalMap(toItem(b))
	if err != nil {
		return pkgerrors.NewInternalError("failed to marshal book").WithCause(err)
	}

	start := time.Now()
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	r.metrics.RecordDB("PutItem", r.tableName, err, time.Since(start))
	if err != nil {
		return r.storeError("PutItem", err, zap.String("bookID", b.ID))
	}
	return nil
}

// Update sets name, author and release date. Without a condition expression
// DynamoDB creates the item when it is missing.
func (r *BookRepository) Update(ctx context.Context, b book.Book) error {
	update := expression.
		Set(expression.Name("name"), expression.Value(b.Name)).
		Set(expression.Name("author"), expression.Value(b.Author))
	if b.ReleaseDate.IsZero() {
		update = update.Remove(expression.Name("releaseDate"))
	} else {
		update = update.Set(expression.Name("releaseDate"), expression.Value(b.ReleaseDate.String()))
	}

	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return pkgerrors.NewInternalError("failed to build update expression").WithCause(err)
	}

	start := time.Now()
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       r.key(b.ID),
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	r.metrics.RecordDB("UpdateItem", r.tableName, err, time.Since(start))
	if err != nil {
		return r.storeError("UpdateItem", err, zap.String("bookID", b.ID))
	}
	return nil
}

// Delete removes the item
func (r *BookRepository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       r.key(id),
	})
	r.metrics.RecordDB("DeleteItem", r.tableName, err, time.Since(start))
	if err != nil {
		return r.storeError("DeleteItem", err, zap.String("bookID", id))
	}
	return nil
}

func (r *BookRepository) appendItems(books []book.Book, items []map[string]types.AttributeValue) ([]book.Book, error) {
	var page []bookItem
	if err := attributevalue.UnmarshalListOfMaps(items, &page); err != nil {
		return books, err
	}
	for _, item := range page {
		books = append(books, r.toBook(item))
	}
	return books, nil
}

// storeError logs a failed call and wraps it as a DATABASE error carrying the AWS error code
func (r *BookRepository) storeError(operation string, err error, fields ...zap.Field) error {
	appErr := pkgerrors.NewDatabaseError(operation, err)

	fields = append(fields, zap.String("operation", operation), zap.String("table", r.tableName), zap.Error(err))
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		appErr = appErr.WithCode(apiErr.ErrorCode())
		fields = append(fields, zap.String("error_code", apiErr.ErrorCode()))
	}

	r.logger.Error("DynamoDB operation failed", fields...)
	return appErr
}
