package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"app/internal/domain/model"
	"app/internal/queue"
	repo "app/internal/repository"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const maxAttempts = 3

// キューからジョブを取り出して順に処理するワーカー。
// ハンドラはすべて再実行しても安全（at-least-once前提）
type Worker struct {
	rdb    *redis.Client
	tx     repo.TransactionManager
	logger *zap.Logger
}

// DI
func NewWorker(rdb *redis.Client, tx repo.TransactionManager, logger *zap.Logger) *Worker {
	return &Worker{rdb: rdb, tx: tx, logger: logger}
}

// BRPOPでブロックしながら回し続ける
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("worker started", zap.String("queue", jobsKey))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker stopping")
			return
		default:
		}

		res, err := w.rdb.BRPop(ctx, 0*time.Second, jobsKey).Result()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			w.logger.Error("redis BRPop failed", zap.Error(err))
			time.Sleep(500 * time.Millisecond)
			continue
		}
		if len(res) < 2 {
			continue
		}

		var job Job
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			w.logger.Error("invalid job payload", zap.Error(err))
			continue
		}

		if err := w.Dispatch(ctx, job); err != nil {
			w.logger.Error("job failed",
				zap.String("job", job.Name),
				zap.Int("attempts", job.Attempts+1),
				zap.Error(err))
			w.retry(ctx, job)
		}
	}
}

// ジョブ名ごとのハンドラへ振り分け
func (w *Worker) Dispatch(ctx context.Context, job Job) error {
	switch job.Name {
	case queue.JobAddShippingDetails:
		var p queue.ShippingDetailsPayload
		if err := json.Unmarshal(job.Payload, &p); err != nil {
			return err
		}
		return w.HandleAddShippingDetails(ctx, p)

	case queue.JobAddOrderItems:
		var p queue.OrderItemsPayload
		if err := json.Unmarshal(job.Payload, &p); err != nil {
			return err
		}
		return w.HandleAddOrderItems(ctx, p)

	case queue.JobUpdateStockAfterCheckout:
		var p queue.StockPayload
		if err := json.Unmarshal(job.Payload, &p); err != nil {
			return err
		}
		return w.HandleUpdateStockAfterCheckout(ctx, p)

	default:
		return fmt.Errorf("unknown job: %s", job.Name)
	}
}

// 失敗ジョブは回数を増やして積み直す
func (w *Worker) retry(ctx context.Context, job Job) {
	job.Attempts++
	if job.Attempts >= maxAttempts {
		w.logger.Error("job dropped", zap.String("job", job.Name), zap.Int("attempts", job.Attempts))
		return
	}

	data, err := json.Marshal(job)
	if err != nil {
		return
	}
	if err := w.rdb.LPush(ctx, jobsKey, data).Err(); err != nil {
		w.logger.Error("requeue failed", zap.String("job", job.Name), zap.Error(err))
	}
}

// 受け取り情報を注文に後付けする（既にあれば何もしない）
func (w *Worker) HandleAddShippingDetails(ctx context.Context, p queue.ShippingDetailsPayload) error {
	return w.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		exists, err := r.Shipping().ExistsByOrderID(ctx, p.OrderID)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		return r.Shipping().Create(ctx, model.ShippingDetail{
			OrderID: p.OrderID,
			Address: p.Address,
			City:    p.City,
			State:   p.State,
			Phone:   p.Phone,
		})
	})
}

// チェックアウト時のスナップショットから注文明細を作る（既にあれば何もしない）
func (w *Worker) HandleAddOrderItems(ctx context.Context, p queue.OrderItemsPayload) error {
	return w.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		count, err := r.OrderItems().CountByOrderID(ctx, p.OrderID)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		items := make([]model.OrderItem, 0, len(p.Items))
		for _, line := range p.Items {
			items = append(items, model.OrderItem{
				ProductID:         line.ProductID,
				VendorID:          line.VendorID,
				TitleSnapshot:     line.Title,
				UnitPriceSnapshot: line.UnitPrice,
				Quantity:          line.Quantity,
			})
		}

		return r.OrderItems().CreateBulk(ctx, p.OrderID, items)
	})
}

// 注文1件ぶんの在庫を減算する。
// stock_appliedフラグで再実行しても二重減算しない。
// 減算は条件付きUPDATEなので在庫はマイナスにならない
func (w *Worker) HandleUpdateStockAfterCheckout(ctx context.Context, p queue.StockPayload) error {
	return w.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		order, err := r.Orders().FindByID(ctx, p.OrderID)
		if err != nil {
			return err
		}
		if order.StockApplied {
			return nil
		}

		items, err := r.OrderItems().ListByOrderID(ctx, p.OrderID)
		if err != nil {
			return err
		}
		//明細の作成ジョブがまだなら、積み直して後で処理する
		if len(items) == 0 {
			return fmt.Errorf("order %d has no items yet", p.OrderID)
		}

		for _, it := range items {
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, it.ProductID, it.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				//同時チェックアウトの負け側。マイナスにはしない
				w.logger.Warn("stock exhausted",
					zap.Int64("order_id", p.OrderID),
					zap.Int64("product_id", it.ProductID),
					zap.Int64("quantity", it.Quantity))
			}
		}

		return r.Orders().SetStockApplied(ctx, p.OrderID)
	})
}
