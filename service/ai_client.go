package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/learnpet/learnpet/config"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// 外部 AI 调用统一的超时上界，失败不重试
const (
	imageGenTimeout = 60 * time.Second
	chatTimeout     = 30 * time.Second
)

// PetAI 宠物相关的 AI 能力
type PetAI interface {
	GeneratePetImage(ctx context.Context, petName, petDescription string) ([]byte, error)
	GeneratePetAdvice(ctx context.Context, studentName string, petLevel, experience int) (string, error)
}

// AIClient 封装 OpenAI 兼容接口：宠物形象生成 + 成长建议
type AIClient struct {
	client     *openai.Client
	imageModel string
	chatModel  string
	logger     *logrus.Logger
}

func NewAIClient(cfg config.OpenAIConfig, logger *logrus.Logger) *AIClient {
	var client *openai.Client
	if cfg.BaseURL != "" {
		// 使用自定义baseURL创建客户端
		clientConfig := openai.DefaultConfig(cfg.APIKey)
		clientConfig.BaseURL = cfg.BaseURL
		client = openai.NewClientWithConfig(clientConfig)
	} else {
		client = openai.NewClient(cfg.APIKey)
	}
	return &AIClient{
		client:     client,
		imageModel: cfg.ImageModel,
		chatModel:  cfg.ChatModel,
		logger:     logger,
	}
}

// GeneratePetImage 生成宠物形象，返回解码后的 PNG 字节
func (c *AIClient) GeneratePetImage(ctx context.Context, petName, petDescription string) ([]byte, error) {
	c.logger.Infof("开始生成宠物图片: %s", petName)

	prompt := fmt.Sprintf(`Create a cute, friendly cartoon pet character for a middle school learning app.
Pet name: %s
Pet description: %s
Style: Adorable, colorful, anime-inspired, suitable for children aged 12-16.
The pet should look happy, friendly and encourage learning. Simple, clean design with bright colors.`, petName, petDescription)

	ctx, cancel := context.WithTimeout(ctx, imageGenTimeout)
	defer cancel()

	// gpt-image-1 不支持 response_format 参数，响应始终为 base64
	resp, err := c.client.CreateImage(ctx, openai.ImageRequest{
		Model:  c.imageModel,
		Prompt: prompt,
		N:      1,
		Size:   openai.CreateImageSize512x512,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: generate pet image: %v", ErrUpstream, err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("%w: no image data returned", ErrUpstream)
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("%w: decode image data: %v", ErrUpstream, err)
	}
	c.logger.Infof("宠物图片生成完成: %s, %d bytes", petName, len(data))
	return data, nil
}

// GeneratePetAdvice 根据等级和经验生成鼓励语
func (c *AIClient) GeneratePetAdvice(ctx context.Context, studentName string, petLevel, experience int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, chatTimeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "你是一个友善的虚拟宠物，你的任务是鼓励中学生完成学习任务。请用温暖、积极的语气，给出简短的鼓励或建议（不超过50字）。",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("我的小主人%s让我达到了%d级，经验值%d。请给我的小主人一些鼓励的话。", studentName, petLevel, experience),
			},
		},
		MaxCompletionTokens: 150,
	})
	if err != nil {
		return "", fmt.Errorf("%w: generate pet advice: %v", ErrUpstream, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: no advice returned", ErrUpstream)
	}
	return resp.Choices[0].Message.Content, nil
}
