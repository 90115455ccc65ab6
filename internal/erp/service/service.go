package service

import (
	"github.com/bitfantasy/boatyard/internal/config"
	"github.com/bitfantasy/boatyard/internal/erp/repository"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Services 服务集合
type Services struct {
	Part         *PartService
	Supplier     *SupplierService
	Boat         *BoatService
	Requirements *RequirementsService
	PO           *POService
	Export       *ExportService
}

// NewServices 创建服务集合
func NewServices(repos *repository.Repositories, rdb *redis.Client, cfg *config.Config, logger *zap.Logger) *Services {
	// 初始化MinIO客户端（报表导出用）
	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		var err error
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			logger.Warn("MinIO client init failed, exports will stay local", zap.Error(err))
			minioClient = nil
		}
	}

	reqSvc := NewRequirementsService(repos.Boat, repos.Part, repos.Supplier, repos.PO, rdb, cfg, logger)
	poSvc := NewPOService(repos.PO, repos.Part, reqSvc, logger)

	return &Services{
		Part:         NewPartService(repos.Part, repos.Inventory),
		Supplier:     NewSupplierService(repos.Supplier, repos.Part),
		Boat:         NewBoatService(repos.Boat, repos.Part),
		Requirements: reqSvc,
		PO:           poSvc,
		Export:       NewExportService(repos.PO, minioClient, cfg.MinIO.Bucket),
	}
}
