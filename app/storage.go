package app

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/bububa/stockcritique/components/document"
	"github.com/bububa/stockcritique/components/vectordb"
	"github.com/bububa/stockcritique/components/vectordb/engines/chromem"
	"github.com/bububa/stockcritique/components/vectordb/engines/memory"
	"github.com/bububa/stockcritique/components/vectordb/engines/milvus"
	"github.com/bububa/stockcritique/config"
)

// NewEngine returns the vector engine holding the Finance index and the classifier lexicon
func NewEngine(ctx context.Context, cfg config.VectorDBConfig) (vectordb.Engine, error) {
	var opts []vectordb.Option
	if cfg.TopK > 0 {
		opts = append(opts, vectordb.WithTopK(cfg.TopK))
	}
	switch cfg.Engine {
	case "", string(vectordb.Memory):
		return memory.New(opts...), nil
	case string(vectordb.Chromem):
		engine, err := chromem.NewPersistent(cfg.Path, opts...)
		if err != nil {
			return nil, fmt.Errorf("chromem: %w", err)
		}
		return engine, nil
	case string(vectordb.Milvus):
		engine, err := milvus.Dial(ctx, cfg.Address, opts...)
		if err != nil {
			return nil, err
		}
		return engine, nil
	}
	return nil, fmt.Errorf("unknown vector engine: %s", cfg.Engine)
}

// NewCorpus returns the S3 corpus when a bucket is configured, the local directory otherwise.
// S3 credentials come from the AWS default chain.
func NewCorpus(ctx context.Context, cfg config.CorpusConfig) (document.Corpus, error) {
	if cfg.Bucket != "" {
		var opts []func(*awsconfig.LoadOptions) error
		if cfg.Region != "" {
			opts = append(opts, awsconfig.WithRegion(cfg.Region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		return document.NewS3Bucket(s3.NewFromConfig(awsCfg), cfg.Bucket, cfg.Prefix), nil
	}
	if cfg.Dir == "" {
		return nil, nil
	}
	return document.NewDir(cfg.Dir), nil
}
