// Package application 用例层公共设施
// 事务边界、用例span与业务指标
package application

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/tracing"
)

const tracerName = "github.com/xiebiao/library/internal/application"

// Transactor 事务边界
// fn内通过ctx访问的Repository都在同一事务中；fn返回error时回滚
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// StartOperation 开启一个用例span，返回的结束函数记录结果
//
//	ctx, done := application.StartOperation(ctx, "lend", attribute.Int("book_id", id))
//	defer func() { done(err) }()
func StartOperation(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := tracing.StartSpan(ctx, tracerName, operation, attrs...)
	return ctx, func(err error) {
		metrics.IncLedgerOperation(operation, Result(err))
		tracing.EndSpan(span, err)
	}
}

// Result 指标的result标签：success或错误类别
func Result(err error) string {
	if err == nil {
		return "success"
	}
	return apperrors.CategoryOf(err).String()
}
