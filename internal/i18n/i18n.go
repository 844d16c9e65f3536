// Package i18n holds the user-facing messages of the publisher in each
// supported language.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Key identifies a message.
type Key string

const (
	InvalidTag         Key = "invalid_tag"
	Success            Key = "success"
	Failure            Key = "failure"
	APIError           Key = "api_error"
	DecodeError        Key = "decode_error"
	RequestError       Key = "request_error"
	UploadStart        Key = "upload_start"
	UploadSuccess      Key = "upload_success"
	UploadFailure      Key = "upload_failure"
	FileReadError      Key = "file_read_error"
	ArtifactNotFile    Key = "artifact_not_file"
	ArtifactNoFilename Key = "artifact_no_filename"
)

// DefaultLanguage is used for any language other than English.
const DefaultLanguage = "zh-cn"

var messages = map[language.Tag]map[Key]string{
	language.AmericanEnglish: {
		InvalidTag:         "Invalid semantic version tag name",
		Success:            "Release created successfully",
		Failure:            "Failed to create release",
		APIError:           "API request failed with status",
		DecodeError:        "Failed to parse release creation response",
		RequestError:       "Failed to send release creation request",
		UploadStart:        "Uploading artifact",
		UploadSuccess:      "Successfully uploaded artifact",
		UploadFailure:      "Failed to upload artifact",
		FileReadError:      "Failed to read artifact file",
		ArtifactNotFile:    "Artifact path is not a file or does not exist, skipping",
		ArtifactNoFilename: "Could not get filename for artifact, skipping",
	},
	language.SimplifiedChinese: {
		InvalidTag:         "无效的语义化版本标签名称",
		Success:            "版本发布成功创建",
		Failure:            "创建版本发布失败",
		APIError:           "API 请求失败，状态码",
		DecodeError:        "解析版本发布响应失败",
		RequestError:       "发送版本发布请求失败",
		UploadStart:        "开始上传 artifact",
		UploadSuccess:      "成功上传 artifact",
		UploadFailure:      "上传 artifact 失败",
		FileReadError:      "读取 artifact 文件失败",
		ArtifactNotFile:    "artifact 路径不是文件或不存在，跳过",
		ArtifactNoFilename: "无法获取 artifact 文件名，跳过",
	},
}

// Localizer renders messages in one language.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

var cat = mustCatalog()

func buildCatalog() (*catalog.Builder, error) {
	b := catalog.NewBuilder(catalog.Fallback(language.SimplifiedChinese))
	for tag, table := range messages {
		for k, msg := range table {
			if err := b.SetString(tag, string(k), msg); err != nil {
				return nil, fmt.Errorf("message %s/%s: %w", tag, k, err)
			}
		}
	}
	return b, nil
}

func mustCatalog() *catalog.Builder {
	b, err := buildCatalog()
	if err != nil {
		panic(err)
	}
	return b
}

// New returns a Localizer for lang ("en-us", "zh-cn", ...). English variants
// select English; everything else falls back to Simplified Chinese.
func New(lang string) *Localizer {
	tag := resolve(lang)
	return &Localizer{tag: tag, printer: message.NewPrinter(tag, message.Catalog(cat))}
}

func resolve(lang string) language.Tag {
	t, err := language.Parse(strings.TrimSpace(lang))
	if err != nil {
		return language.SimplifiedChinese
	}
	if base, _ := t.Base(); base.String() == "en" {
		return language.AmericanEnglish
	}
	return language.SimplifiedChinese
}

// Language returns the BCP 47 tag in use.
func (l *Localizer) Language() string {
	return l.tag.String()
}

// Text returns the message for k.
func (l *Localizer) Text(k Key) string {
	return l.printer.Sprintf(string(k))
}
