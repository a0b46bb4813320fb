package seen

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store は、処理済み記事のダイジェストを管理します。
// ディスク上の形式は、URLのmd5ダイジェスト（16進文字列）のJSON配列です。
// これは既存サイトの state ファイルと互換の形式です。
type Store struct {
	path string
	ids  map[string]struct{}

	// 保存時に読み込み順＋追加順を保つためのスライス
	order []string
}

// Digest は、URLからストアのキーとなるダイジェストを計算します。
func Digest(url string) string {
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:])
}

// Load は、指定されたパスからストアを読み込みます。
// ファイルが存在しない場合は空のストアを返します（エラーではない）。
func Load(path string) (*Store, error) {
	s := &Store{
		path: path,
		ids:  make(map[string]struct{}),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read seen state file %s: %w", path, err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("failed to unmarshal seen state file %s: %w", path, err)
	}

	for _, id := range ids {
		if _, exists := s.ids[id]; exists {
			continue
		}
		s.ids[id] = struct{}{}
		s.order = append(s.order, id)
	}
	return s, nil
}

// Has は、指定されたURLが処理済みかどうかを返します。
func (s *Store) Has(url string) bool {
	_, ok := s.ids[Digest(url)]
	return ok
}

// Add は、指定されたURLを処理済みとして記録します。
// Save を呼ぶまでディスクには反映されません。
func (s *Store) Add(url string) {
	id := Digest(url)
	if _, exists := s.ids[id]; exists {
		return
	}
	s.ids[id] = struct{}{}
	s.order = append(s.order, id)
}

// Len は、記録されているダイジェストの数を返します。
func (s *Store) Len() int {
	return len(s.order)
}

// Save は、ストアをディスクに書き出します。
// 一時ファイルに書いてからリネームすることで、途中で落ちても
// 元のファイルが壊れないようにしています。
func (s *Store) Save() error {
	data, err := json.Marshal(s.order)
	if err != nil {
		return fmt.Errorf("failed to marshal seen state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory %s: %w", dir, err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write seen state file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace seen state file %s: %w", s.path, err)
	}
	return nil
}
