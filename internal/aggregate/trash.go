package aggregate

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

// trashName genera un nombre sin colisiones dentro de la basura:
// foto.jpg -> foto_<unixnano>.jpg
func trashName(src string) string {
	base := filepath.Base(src)
	ext := filepath.Ext(base)
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(base, ext), time.Now().UnixNano(), ext)
}

// moveToTrash devuelve la ruta final dentro de trashDir, o "" si el archivo
// no se movió.
func moveToTrash(src, trashDir string) (string, error) {
	dst := filepath.Join(trashDir, trashName(src))

	err := os.Rename(src, dst)
	if errors.Is(err, syscall.EXDEV) {
		err = copyThenRemove(src, dst)
	}
	if err != nil {
		return "", err
	}
	return dst, nil
}

// copyThenRemove mueve entre sistemas de archivos. Si algo falla se borra la
// copia y src queda intacto.
func copyThenRemove(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}

	_, err = io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("copiando a la basura: %w", err)
	}

	if err := os.Remove(src); err != nil {
		_ = os.Remove(dst)
		return err
	}
	return nil
}
