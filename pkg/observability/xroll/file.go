package xroll

import (
	"io"
	"os"
	"time"
)

// openFlags epoch 文件以追加方式打开，不存在则创建
const openFlags = os.O_CREATE | os.O_APPEND | os.O_WRONLY

// logFile 活动文件的最小接口
type logFile interface {
	io.WriteCloser
	Stat() (os.FileInfo, error)
}

// fileOpener 打开 epoch 文件
type fileOpener interface {
	OpenFile(name string, flag int, perm os.FileMode) (logFile, error)
}

type osOpener struct{}

func (osOpener) OpenFile(name string, flag int, perm os.FileMode) (logFile, error) {
	f, err := os.OpenFile(name, flag, perm) //nolint:gosec // 路径由目录与生成的文件名拼接
	if err != nil {
		return nil, err
	}
	return f, nil
}

// epochFile 当前 epoch 的文件句柄
type epochFile struct {
	f       logFile
	path    string
	created time.Time
}
