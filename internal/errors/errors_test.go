// internal/errors/errors_test.go
package errors

import (
	stderrors "errors"
	"os"
	"testing"
)

func TestIOErrorUnwraps(t *testing.T) {
	err := NewIOError("读取图片失败", os.ErrNotExist)

	if TypeOf(err) != ErrorTypeIO {
		t.Fatalf("期望 io_error，实际: %v", TypeOf(err))
	}
	if !stderrors.Is(err, os.ErrNotExist) {
		t.Error("应能通过 errors.Is 找到原始错误")
	}

	var appErr *AppError
	if !As(err, &appErr) || appErr.Code != "IO_ERROR" {
		t.Errorf("错误代码不符合预期: %+v", appErr)
	}
}

func TestTypeOfUnknown(t *testing.T) {
	if TypeOf(stderrors.New("boom")) != ErrorTypeError {
		t.Fatal("普通错误应视为处理错误")
	}
	if IsNotFoundError(stderrors.New("boom")) {
		t.Fatal("普通错误不应是未找到错误")
	}
}
