package hasher

import (
	"context"
	"crypto/md5"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"hash"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/soyunomas/ftools/internal/entities"
)

// ChunkSize es el tamaño de cada lectura del hash completo (1 MiB).
const ChunkSize = 1024 * 1024

// PrefixSize define cuánto leemos para el pre-filtro parcial (4KB)
const PrefixSize = 4 * 1024

// Algorithm selecciona la función de digest del hash completo.
type Algorithm int

const (
	SHA256 Algorithm = iota // Default
	SHA512
	MD5
	XXHash
)

var algorithmNames = map[Algorithm]string{
	SHA256: "sha256",
	SHA512: "sha512",
	MD5:    "md5",
	XXHash: "xxhash",
}

// Names devuelve los nombres aceptados por ParseAlgorithm.
func Names() []string {
	return []string{"sha256", "sha512", "md5", "xxhash"}
}

func (a Algorithm) String() string {
	if name, ok := algorithmNames[a]; ok {
		return name
	}
	return "unknown"
}

// Discouraged indica que el riesgo de colisión es demasiado alto para
// afirmar identidad de contenido. SHA256 y SHA512 se consideran seguros.
func (a Algorithm) Discouraged() bool {
	return a == MD5 || a == XXHash
}

// New crea un acumulador incremental para el algoritmo.
func (a Algorithm) New() hash.Hash {
	switch a {
	case SHA512:
		return sha512.New()
	case MD5:
		return md5.New()
	case XXHash:
		return xxhash.New()
	default:
		return sha256.New()
	}
}

// ParseAlgorithm traduce un nombre (sin distinguir mayúsculas) a Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for alg, algName := range algorithmNames {
		if algName == n {
			return alg, nil
		}
	}
	return 0, &entities.ConfigError{
		Key:   "algorithm",
		Value: name,
		Err:   errors.New("usa sha256, sha512, md5 o xxhash"),
	}
}

// bufferPool reutiliza los buffers de 1 MiB entre workers
var bufferPool = sync.Pool{
	New: func() any {
		b := make([]byte, ChunkSize)
		return &b
	},
}

// hashPool para reutilizar el estado del digest del pre-filtro
var hashPool = sync.Pool{
	New: func() any {
		return xxhash.New()
	},
}

// HashFile calcula el digest completo leyendo en bloques de ChunkSize.
// La memoria usada es constante sin importar el tamaño del archivo. El
// contexto se consulta entre bloques.
func HashFile(ctx context.Context, path string, alg Algorithm) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", &entities.IoError{Path: path, Err: err}
	}
	defer file.Close()

	h := alg.New()

	bufPtr := bufferPool.Get().(*[]byte)
	buf := *bufPtr
	defer bufferPool.Put(bufPtr)

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		n, err := file.Read(buf)
		if n > 0 {
			_, _ = h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", &entities.IoError{Path: path, Err: err}
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashPrefix calcula xxhash sobre los primeros PrefixSize bytes.
// Es solo un pre-filtro: nunca se usa para afirmar duplicación.
func HashPrefix(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", &entities.IoError{Path: path, Err: err}
	}
	defer file.Close()

	h := hashPool.Get().(*xxhash.Digest)
	h.Reset()
	defer hashPool.Put(h)

	// Alloc simple de 4KB. Es barato y evita locking del Pool global.
	buf := make([]byte, PrefixSize)
	n, err := io.ReadFull(file, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", &entities.IoError{Path: path, Err: err}
	}

	_, _ = h.Write(buf[:n])

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Verify compara un digest calculado con uno esperado. Se acepta que uno sea
// prefijo del otro para permitir hashes abreviados.
func Verify(actual, expected string) bool {
	a := strings.ToLower(strings.TrimSpace(actual))
	e := strings.ToLower(strings.TrimSpace(expected))
	if a == "" || e == "" {
		return false
	}
	return strings.HasPrefix(a, e) || strings.HasPrefix(e, a)
}
