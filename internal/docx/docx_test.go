package docx

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeDocx 在临时目录生成一个最小可用的 DOCX 测试文件
func writeDocx(t *testing.T, parts map[string]string) string {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "input.docx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

const docxHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`

// simpleDocumentXML 两个正文段落（第二个段落含两种格式的 run）
// 与一张 2x1 的表格。
const simpleDocumentXML = docxHeader + `
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
 <w:body>
  <w:p>
   <w:r><w:t>Hello</w:t></w:r>
  </w:p>
  <w:p/>
  <w:p>
   <w:r><w:t xml:space="preserve">Wide </w:t></w:r>
   <w:r><w:t>open </w:t></w:r>
   <w:r><w:rPr><w:b/></w:rPr><w:t>World</w:t></w:r>
  </w:p>
  <w:tbl>
   <w:tr>
    <w:tc><w:p><w:r><w:t>Header</w:t></w:r></w:p></w:tc>
   </w:tr>
   <w:tr>
    <w:tc><w:p><w:r><w:t>42</w:t></w:r></w:p></w:tc>
   </w:tr>
  </w:tbl>
  <w:sectPr/>
 </w:body>
</w:document>`

const chartXML = docxHeader + `
<c:chartSpace xmlns:c="http://schemas.openxmlformats.org/drawingml/2006/chart"
              xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">
 <c:chart>
  <c:title><a:t>Revenue</a:t></c:title>
  <c:plotArea>
   <c:cat><c:v>North</c:v></c:cat>
   <c:val><c:v>1024</c:v></c:val>
  </c:plotArea>
 </c:chart>
</c:chartSpace>`

const diagramXML = docxHeader + `
<dgm:dataModel xmlns:dgm="http://schemas.openxmlformats.org/drawingml/2006/diagram"
               xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">
 <dgm:pt><a:t>Plan</a:t></dgm:pt>
 <dgm:pt><a:t> </a:t></dgm:pt>
 <dgm:pt><a:t>Ship</a:t></dgm:pt>
</dgm:dataModel>`

func simpleDocx(t *testing.T) string {
	return writeDocx(t, map[string]string{
		"[Content_Types].xml":      docxHeader + `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`,
		"word/document.xml":        simpleDocumentXML,
		"word/charts/chart1.xml":   chartXML,
		"word/diagrams/data1.xml":  diagramXML,
	})
}
